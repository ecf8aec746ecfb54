// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to create a new credential record.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	IsSuperuser bool   `json:"-"`
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordInput defines the data required to redeem a recovery token.
type ResetPasswordInput struct {
	RecoveryToken string `json:"recoveryToken" validate:"required"`
	NewPassword   string `json:"newPassword" validate:"required"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's public identity.
type RegisterOutput struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// LoginOutput returns the session token issued after a successful login.
type LoginOutput struct {
	SessionToken string    `json:"sessionToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ProfileOutput returns the account details visible to the account holder.
type ProfileOutput struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"isActive"`
	IsSuperuser bool      `json:"isSuperuser"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthUsecase is the authentication service, the single entry point other
// layers call. It is the boundary where internal failure detail collapses
// into the externally visible error taxonomy.
type AuthUsecase interface {
	// Register creates a credential record for a new account.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies a password against the stored hash and issues a session
	// token. Absent accounts and wrong passwords fail identically, in
	// message and in cost.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Authorize validates a bearer session token and returns the subject id.
	// Every validation failure surfaces as the same authentication error.
	Authorize(ctx context.Context, token string) (uuid.UUID, error)

	// Profile loads the account record behind an authorized subject id.
	Profile(ctx context.Context, userID uuid.UUID) (*ProfileOutput, error)

	// RequestPasswordReset issues a recovery token and mails it, if the
	// account exists. Observably identical either way.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword redeems a recovery token exactly once and overwrites the
	// account's password hash.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}
