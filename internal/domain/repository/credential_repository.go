// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for credential persistence. The application layer
// handles these without depending on database-specific errors.
var (
	// ErrCredentialNotFound is returned when no credential record matches the lookup.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrEmailTaken is returned when creating a credential for an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStoreTimeout is returned when a store access exceeds its bounded timeout
	// or the backend is unreachable. Safe to retry with backoff.
	ErrStoreTimeout = errors.New("credential store unavailable")
)

// CredentialRepository defines the standard operations for credential persistence.
// The application layer depends on this interface, not the concrete implementation.
type CredentialRepository interface {
	// FindByID retrieves a single credential record by account id.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Credential, error)

	// FindByEmail retrieves a single credential record by normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)

	// Create persists a new credential record.
	Create(ctx context.Context, cred *entity.Credential) error

	// UpdatePasswordHash overwrites the stored password hash of an account.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}
