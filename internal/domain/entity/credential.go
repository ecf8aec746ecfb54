// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential is the stored representation of one account's login identity.
// It is owned by the credential store and mutated only through the
// authentication service (creation and password changes).
type Credential struct {
	ID           uuid.UUID // The unique identifier of the account.
	Email        string    // The login identifier, unique and case-normalized.
	PasswordHash string    // Opaque hash string encoding algorithm, salt and digest.
	IsActive     bool      // Disabled accounts fail login regardless of password.
	IsSuperuser  bool      // Marks operator accounts.
	CreatedAt    time.Time // Timestamp of account creation.
	UpdatedAt    time.Time // Timestamp of the last credential mutation.
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
// The whole address is lowercased; local-part case sensitivity is
// deliberately ignored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
