// Package errors defines the externally visible error taxonomy of the
// authentication core. Internal failure detail (which of signature, expiry,
// parse or reuse tripped) is collapsed into these kinds before crossing the
// service boundary so that callers cannot be used as an oracle.
package errors

import (
	"net/http"

	"gatekeeper/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error kinds. These are the only failures a caller of the
// authentication service can observe.
var (
	// ErrAuthenticationFailed covers bad credentials and invalid, expired or
	// tampered session tokens. Deliberately undifferentiated.
	ErrAuthenticationFailed = NewBaseError(
		http.StatusUnauthorized,
		"AUTHENTICATION_FAILED",
		"Invalid credentials or session",
		"",
	)

	// ErrAccountDisabled marks login attempts against accounts with
	// is_active false. It appears in logs only; the caller sees the same
	// undifferentiated authentication failure as for a wrong password.
	ErrAccountDisabled = NewBaseError(
		http.StatusForbidden,
		"ACCOUNT_DISABLED",
		"This account has been disabled",
		"",
	)

	// ErrInvalidOrExpiredToken merges every recovery-token failure mode:
	// bad signature, wrong purpose, expiry, malformed payload and reuse.
	ErrInvalidOrExpiredToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_OR_EXPIRED_TOKEN",
		"The recovery token is invalid or has expired",
		"",
	)

	// ErrWeakPassword signals a password policy violation on registration
	// or reset.
	ErrWeakPassword = NewBaseError(
		http.StatusBadRequest,
		"WEAK_PASSWORD",
		"Password does not meet the minimum policy",
		"",
	)

	// ErrStoreUnavailable is the only kind a caller should retry; it marks a
	// transient persistence failure, typically a timed-out store access.
	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"The credential store is temporarily unavailable",
		"",
	)

	// ErrEmailAlreadyRegistered is returned when creating a credential for an
	// email that already has one.
	ErrEmailAlreadyRegistered = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_REGISTERED",
		"This email address is already registered",
		"",
	)

	// ErrValidationFailed covers malformed request input.
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request input failed validation",
		"",
	)

	// ErrInternalError is the fallback for unexpected failures.
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)
