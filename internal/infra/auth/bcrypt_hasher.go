// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"gatekeeper/config"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost      int
	minLength int
	maxLength int
}

// NewBcryptHasher is the constructor for bcryptHasher. Cost and the password
// policy floor come from configuration.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Auth.BcryptCost
	}

	hasher := &bcryptHasher{cost: cost}
	if cfg.PasswordPolicy != nil {
		hasher.minLength = cfg.PasswordPolicy.MinLength
		hasher.maxLength = cfg.PasswordPolicy.MaxLength
	}

	return hasher
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt generates a fresh random salt per call, so identical plaintexts
// hash to different strings.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash. bcrypt's own
// comparison is constant-time over the digest; a malformed stored hash
// simply yields false.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// ValidateStrength enforces the configured length floor and ceiling.
// bcrypt only keys off the first 72 bytes, so the ceiling also guards
// against silently truncated passphrases.
func (h *bcryptHasher) ValidateStrength(password string) error {
	if len(password) < h.minLength {
		return domainerrors.ErrWeakPassword.WrapMessage("password below minimum length")
	}
	if h.maxLength > 0 && len(password) > h.maxLength {
		return domainerrors.ErrWeakPassword.WrapMessage("password above maximum length")
	}

	return nil
}
