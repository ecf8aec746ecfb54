// Package validator adapts go-playground validation to echo's Validator
// interface.
package validator

import (
	"github.com/go-playground/validator/v10"

	domainerrors "gatekeeper/internal/domain/errors"
)

// CustomValidator wraps a validator instance for echo.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the request validator used by the HTTP server.
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate checks struct tags on the bound request and collapses failures
// into the validation error kind.
func (v *CustomValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
