package middleware

import (
	"net/http"
	"strings"

	"permitdesk/config"
	"permitdesk/internal/delivery/http/cookie"
	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

// principalKey is the echo context key the authenticated principal is stored under.
const principalKey = "principal"

// AuthMiddleware guards protected routes by validating the access token and
// attaching the authenticated principal to the request context.
type AuthMiddleware struct {
	sessionUc usecase.SessionUsecase
	loginURL  string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessionUc usecase.SessionUsecase, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		sessionUc: sessionUc,
		loginURL:  cfg.Auth.LoginURL,
	}
}

// Authenticate validates the access token from the auth cookie, falling back
// to a Bearer header for non-browser clients. Validation is a single yes/no:
// the response never explains why a token was rejected.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := cookie.Read(c, cookie.AccessToken)
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			return m.unauthorized(c, "MISSING_TOKEN", "Authentication required")
		}

		principal, ok := m.sessionUc.ValidateAccessToken(c.Request().Context(), token)
		if !ok {
			return m.unauthorized(c, "TOKEN_INVALID", "Invalid or expired access token")
		}

		c.Set(principalKey, principal)

		return next(c)
	}
}

// RequireRole checks that the authenticated principal carries the given role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := GetPrincipal(c)
			if principal == nil {
				return m.unauthorized(c, "MISSING_TOKEN", "Authentication required")
			}
			if !principal.HasRole(role) {
				return c.JSON(http.StatusForbidden, domainerrors.Response{
					Success: false,
					Code:    http.StatusForbidden,
					Message: "Access denied",
					Error:   &domainerrors.ErrorInfo{Code: "FORBIDDEN"},
				})
			}

			return next(c)
		}
	}
}

// GetPrincipal returns the authenticated principal set by Authenticate, or nil.
func GetPrincipal(c echo.Context) *entity.Principal {
	if principal, ok := c.Get(principalKey).(*entity.Principal); ok {
		return principal
	}

	return nil
}

// unauthorized renders the 401 payload including the login URL the frontend
// should send the user to.
func (m *AuthMiddleware) unauthorized(c echo.Context, code, message string) error {
	return c.JSON(http.StatusUnauthorized, domainerrors.Response{
		Success:  false,
		Code:     http.StatusUnauthorized,
		Message:  message,
		Error:    &domainerrors.ErrorInfo{Code: code},
		LoginURL: m.loginURL,
	})
}

// bearerToken extracts a token from the Authorization header, if present.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}

	return token
}
