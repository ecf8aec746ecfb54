package postgres

import (
	"context"
	"strings"

	"gatekeeper/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Helper functions that classify database errors into domain terms.

func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// The postgres driver surfaces unique_violation (23505) through gorm's
	// translated error most of the time, but raw driver errors slip through
	// on bulk paths.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "23505")
}

// isStoreUnavailable reports whether an error marks a transient
// infrastructure failure: a bounded store timeout that fired, a cancelled
// request, or a broken connection. These map to the one retryable error
// kind the subsystem exposes.
func isStoreUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "bad connection")
}

// classifyStoreError translates a gorm error into domain repository errors,
// falling back to a wrapped original with the given message.
func classifyStoreError(err error, msg string) error {
	if isStoreUnavailable(err) {
		return repository.ErrStoreTimeout
	}

	return errors.Wrap(err, msg)
}
