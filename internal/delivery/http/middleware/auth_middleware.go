package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"gatekeeper/internal/delivery/http/response"
	"gatekeeper/internal/usecase"
)

// ContextKeyUserID is the echo.Context key under which the authenticated
// subject id is stored for handlers.
const ContextKeyUserID = "userID"

// AuthMiddleware guards routes with session-token validation.
type AuthMiddleware struct {
	auth usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(auth usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate validates the bearer session token on the request and stores
// the subject id on the context. Missing, malformed, forged and expired
// tokens all produce the same rejection.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "AUTHENTICATION_FAILED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "AUTHENTICATION_FAILED", "Authorization header must be a Bearer token")
		}

		userID, err := m.auth.Authorize(c.Request().Context(), tokenString)
		if err != nil {
			return err
		}

		c.Set(ContextKeyUserID, userID)

		return next(c)
	}
}
