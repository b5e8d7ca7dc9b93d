package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"permitdesk/config"
	domainerrors "permitdesk/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newErrorMiddleware() *ErrorMiddleware {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{LoginURL: "/auth/login"}

	return NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
}

func recordError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	newErrorMiddleware().HandleHTTPError(err, c)

	return rec
}

func TestErrorMiddleware_SessionErrorsCarryReauthHint(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantCode       string
		requiresReauth bool
	}{
		{"revoked session", domainerrors.ErrSessionRevoked, "SESSION_REVOKED", true},
		{"expired session", domainerrors.ErrSessionExpired, "SESSION_EXPIRED", true},
		{"unknown session", domainerrors.ErrSessionInvalid, "SESSION_INVALID", true},
		{"refresh disabled", domainerrors.ErrRefreshDisabled, "REFRESH_DISABLED", true},
		{"dead access token", domainerrors.ErrTokenInvalid, "TOKEN_INVALID", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordError(t, errors.WithStack(tt.err))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
			assert.Contains(t, rec.Body.String(), `"loginUrl":"/auth/login"`)
			if tt.requiresReauth {
				assert.Contains(t, rec.Body.String(), `"requiresReauth":true`)
			} else {
				assert.NotContains(t, rec.Body.String(), "requiresReauth")
			}
		})
	}
}

func TestErrorMiddleware_NonAuthAppErrorOmitsLoginURL(t *testing.T) {
	rec := recordError(t, domainerrors.ErrApplicationNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "APPLICATION_NOT_FOUND")
	assert.NotContains(t, rec.Body.String(), "loginUrl")
}

func TestErrorMiddleware_UnknownErrorIs500(t *testing.T) {
	rec := recordError(t, errors.New("gorm: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestErrorMiddleware_EchoHTTPErrorPassesThrough(t *testing.T) {
	rec := recordError(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "HTTP_ERROR")
}
