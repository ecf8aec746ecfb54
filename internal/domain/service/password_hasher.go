// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password. Two calls on the
	// same plaintext produce different outputs; only Check is consistent.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. It runs in time
	// independent of where a mismatch occurs and returns false, rather than
	// an error, for malformed stored hashes.
	Check(password, hash string) bool

	// ValidateStrength reports whether a plaintext meets the configured
	// minimum password policy.
	ValidateStrength(password string) error
}
