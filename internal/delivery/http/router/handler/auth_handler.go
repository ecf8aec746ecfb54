// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"gatekeeper/internal/delivery/http/middleware"
	"gatekeeper/internal/delivery/http/response"
	"gatekeeper/internal/usecase"
)

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	auth   usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Account registered successfully")
}

// Login handles the password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input *usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.auth.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Login successful")
}

// requestResetInput carries the reset request body.
type requestResetInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset handles the recovery token request. The response is
// identical whether or not the email has an account.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var input *requestResetInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password reset input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, nil,
		"If the address is registered, a reset email is on its way")
}

// ResetPassword handles recovery token redemption.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var input *usecase.ResetPasswordInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password reset input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password has been reset")
}

// Me returns the authenticated subject's own account record.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "AUTHENTICATION_FAILED", "Invalid session")
	}

	profile, err := h.auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
