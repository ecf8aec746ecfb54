package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeeper/internal/delivery/http/middleware"
	"gatekeeper/internal/delivery/http/validator"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/usecase"
)

// stubAuthUsecase scripts the usecase responses for handler tests.
type stubAuthUsecase struct {
	loginOut     *usecase.LoginOutput
	loginErr     error
	registerOut  *usecase.RegisterOutput
	registerErr  error
	authorizeID  uuid.UUID
	authorizeErr error
	profileOut   *usecase.ProfileOutput
	profileErr   error
	resetReqErr  error
	resetErr     error

	lastResetEmail string
}

func (s *stubAuthUsecase) Register(_ context.Context, _ *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	return s.registerOut, s.registerErr
}

func (s *stubAuthUsecase) Login(_ context.Context, _ *usecase.LoginInput) (*usecase.LoginOutput, error) {
	return s.loginOut, s.loginErr
}

func (s *stubAuthUsecase) Authorize(_ context.Context, _ string) (uuid.UUID, error) {
	return s.authorizeID, s.authorizeErr
}

func (s *stubAuthUsecase) Profile(_ context.Context, _ uuid.UUID) (*usecase.ProfileOutput, error) {
	return s.profileOut, s.profileErr
}

func (s *stubAuthUsecase) RequestPasswordReset(_ context.Context, email string) error {
	s.lastResetEmail = email

	return s.resetReqErr
}

func (s *stubAuthUsecase) ResetPassword(_ context.Context, _ *usecase.ResetPasswordInput) error {
	return s.resetErr
}

func newTestEcho(stub *stubAuthUsecase) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	h := NewAuthHandler(stub, logger)
	authMw := middleware.NewAuthMiddleware(stub)

	e.POST("/auth/login", h.Login)
	e.POST("/auth/password-reset/request", h.RequestPasswordReset)
	e.GET("/auth/me", h.Me, authMw.Authenticate)

	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthUsecase{
		loginOut: &usecase.LoginOutput{SessionToken: "signed-token", TokenType: "Bearer"},
	}
	e := newTestEcho(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"correct horse battery"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed-token")
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestAuthHandler_Login_AuthenticationFailed(t *testing.T) {
	stub := &stubAuthUsecase{loginErr: domainerrors.ErrAuthenticationFailed}
	e := newTestEcho(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTHENTICATION_FAILED")
}

func TestAuthHandler_Login_RejectsInvalidBody(t *testing.T) {
	stub := &stubAuthUsecase{}
	e := newTestEcho(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"not-an-email","password":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RequestPasswordReset_AlwaysAccepted(t *testing.T) {
	stub := &stubAuthUsecase{}
	e := newTestEcho(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset/request",
		strings.NewReader(`{"email":"whoever@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "whoever@example.com", stub.lastResetEmail)
}

func TestAuthHandler_Me_RequiresBearerToken(t *testing.T) {
	userID := uuid.New()
	stub := &stubAuthUsecase{
		authorizeID: userID,
		profileOut:  &usecase.ProfileOutput{ID: userID, Email: "alice@example.com", IsActive: true},
	}
	e := newTestEcho(stub)

	// Missing header.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid bearer token returns the account record.
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer some-session-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestAuthHandler_Me_InvalidToken(t *testing.T) {
	stub := &stubAuthUsecase{authorizeErr: domainerrors.ErrAuthenticationFailed}
	e := newTestEcho(stub)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tampered")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTHENTICATION_FAILED")
}
