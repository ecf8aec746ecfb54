package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A token minted for one purpose never validates for the
// other, so a session token cannot be replayed as a recovery token.
const (
	PurposeSession  = "session"
	PurposeRecovery = "password-reset"
)

// Internal token failure kinds. Callers in the usecase layer log which one
// occurred but collapse all of them before the subsystem boundary.
var (
	// ErrTokenMalformed is returned when the token cannot be parsed into the expected structure.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature is returned when the signature does not verify over the claimed payload.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenPurpose is returned when the purpose claim does not match the operation.
	ErrTokenPurpose = errors.New("token purpose mismatch")
)

// Claims defines the signed payload of both session and recovery tokens.
// Recovery tokens additionally carry their single-use nonce in the
// RegisteredClaims ID field (jti).
type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies signed, self-contained, expiring tokens.
// Issuance and validation touch no shared mutable state and are safe to run
// fully in parallel; single-use bookkeeping for recovery tokens lives in the
// consumption store, not here.
type TokenService interface {
	// IssueSession creates a signed session token for the subject with the
	// configured session lifetime. The returned expiry is the exact exp
	// stamped into the token.
	IssueSession(subjectID uuid.UUID) (token string, expiresAt time.Time, err error)

	// ValidateSession verifies signature, expiry and purpose of a session
	// token and returns the subject id. Fails with one of the sentinel
	// token errors above.
	ValidateSession(token string) (uuid.UUID, error)

	// IssueRecovery creates a signed recovery token for the subject, tagged
	// with the password-reset purpose and a fresh random nonce. The nonce is
	// returned alongside the token.
	IssueRecovery(subjectID uuid.UUID) (token string, nonce uuid.UUID, err error)

	// ParseRecovery verifies signature, expiry and purpose of a recovery
	// token and returns its claims, including subject and nonce. It does NOT
	// check single-use state; that is the recovery manager's job.
	ParseRecovery(token string) (*Claims, error)

	// SessionLifetime returns the configured session token lifetime.
	SessionLifetime() time.Duration

	// RecoveryLifetime returns the configured recovery token lifetime,
	// strictly shorter than the session lifetime.
	RecoveryLifetime() time.Duration
}
