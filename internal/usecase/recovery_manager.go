package usecase

import (
	"context"

	"github.com/google/uuid"
)

// RecoveryTokenManager governs the lifecycle of password-recovery tokens:
// issuance bound to an account, single-use redemption, and expiry cleanup.
type RecoveryTokenManager interface {
	// IssueForEmail mints a recovery token for the account registered under
	// email. When no such account exists it performs the full issuance work
	// against a throwaway subject before failing, so callers pay the same
	// cost on both paths. Returns repository.ErrCredentialNotFound for
	// unknown emails.
	IssueForEmail(ctx context.Context, email string) (token string, userID uuid.UUID, err error)

	// Consume validates a recovery token and atomically marks its nonce as
	// used. At most one call per token ever succeeds, regardless of
	// concurrency. Returns the subject the token was issued to.
	Consume(ctx context.Context, token string) (uuid.UUID, error)

	// PurgeExpired removes consumption records whose retention window has
	// passed. Intended for periodic housekeeping.
	PurgeExpired(ctx context.Context) (int64, error)
}
