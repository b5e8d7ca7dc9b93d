// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"permitdesk/config"
	"permitdesk/internal/delivery/http/cookie"
	"permitdesk/internal/delivery/http/middleware"
	"permitdesk/internal/delivery/http/response"
	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the login flow and session endpoints.
type AuthHandler struct {
	authUc    usecase.AuthUsecase
	sessionUc usecase.SessionUsecase
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(authUc usecase.AuthUsecase, sessionUc usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUc:    authUc,
		sessionUc: sessionUc,
		cfg:       cfg,
		logger:    logger,
	}
}

// Login starts the OIDC authorization code flow. State and nonce are pinned in
// short-lived cookies so the callback can verify them.
func (h *AuthHandler) Login(c echo.Context) error {
	redirect, err := h.authUc.BeginLogin(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	secure := h.cfg.Auth.SecureCookies
	cookie.SetLoginFlow(c, cookie.OAuthState, redirect.State, secure)
	cookie.SetLoginFlow(c, cookie.OAuthNonce, redirect.Nonce, secure)

	return c.Redirect(http.StatusFound, redirect.URL)
}

// Callback completes the login: it verifies state, exchanges the code, and
// hands the browser its token cookies. Failures redirect to the error page
// rather than rendering JSON; this endpoint is only ever hit by a browser
// arriving from the identity provider.
func (h *AuthHandler) Callback(c echo.Context) error {
	secure := h.cfg.Auth.SecureCookies

	state := c.QueryParam("state")
	if state == "" || state != cookie.Read(c, cookie.OAuthState) {
		h.logger.Warn("Login callback rejected, state mismatch")

		return h.redirectToError(c, "state_mismatch")
	}

	result, err := h.authUc.HandleCallback(c.Request().Context(), usecase.CallbackInput{
		Code:      c.QueryParam("code"),
		Nonce:     cookie.Read(c, cookie.OAuthNonce),
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})

	cookie.Clear(c, cookie.OAuthState, secure)
	cookie.Clear(c, cookie.OAuthNonce, secure)

	if err != nil {
		h.logger.Warn("Login callback failed", slog.Any("error", err))

		return h.redirectToError(c, "login_failed")
	}

	cookie.Set(c, cookie.AccessToken, result.AccessToken, h.cfg.Auth.AccessTokenTTL, secure)
	cookie.Set(c, cookie.RefreshToken, result.RefreshToken, h.cfg.Auth.RefreshTokenTTL, secure)

	return c.Redirect(http.StatusFound, h.cfg.Auth.FrontendURL)
}

// Refresh exchanges the refresh cookie for a fresh access token. When silent
// refresh is disabled, or the session is dead, the error handler renders a 401
// whose error code tells the frontend whether re-login is required.
func (h *AuthHandler) Refresh(c echo.Context) error {
	// Gate before looking at the cookie so a disabled deployment always
	// answers REFRESH_DISABLED, with or without a cookie present.
	if !h.cfg.Auth.AllowSilentRefresh {
		return errors.WithStack(domainerrors.ErrRefreshDisabled)
	}

	refreshToken := cookie.Read(c, cookie.RefreshToken)
	if refreshToken == "" {
		return errors.WithStack(domainerrors.ErrSessionInvalid)
	}

	out, err := h.sessionUc.RefreshAccessToken(c.Request().Context(), usecase.RefreshInput{
		RefreshToken: refreshToken,
		ClientIP:     c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	secure := h.cfg.Auth.SecureCookies
	cookie.Set(c, cookie.AccessToken, out.AccessToken, h.cfg.Auth.AccessTokenTTL, secure)
	if out.RefreshToken != refreshToken {
		// Rotation handed out a replacement.
		cookie.Set(c, cookie.RefreshToken, out.RefreshToken, h.cfg.Auth.RefreshTokenTTL, secure)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"expiresAt": out.ExpiresAt,
	}, "Token refreshed successfully")
}

// Logout revokes both credentials best-effort and clears the cookies. Logout
// never fails: a revocation hiccup on an expiring credential is logged, not
// surfaced.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	secure := h.cfg.Auth.SecureCookies

	if accessToken := cookie.Read(c, cookie.AccessToken); accessToken != "" {
		if err := h.sessionUc.RevokeAccessToken(ctx, accessToken, entity.RevocationReasonLogout); err != nil {
			h.logger.Warn("Best-effort access token revocation failed", slog.Any("error", err))
		}
	}
	if refreshToken := cookie.Read(c, cookie.RefreshToken); refreshToken != "" {
		if err := h.sessionUc.RevokeRefreshToken(ctx, refreshToken, entity.RevocationReasonLogout); err != nil {
			h.logger.Warn("Best-effort refresh token revocation failed", slog.Any("error", err))
		}
	}

	cookie.Clear(c, cookie.AccessToken, secure)
	cookie.Clear(c, cookie.RefreshToken, secure)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"}, "Logout successful")
}

// userPayload is the profile shape served to the frontend.
type userPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	LastLoginAt any      `json:"lastLoginAt,omitempty"`
}

// User returns the authenticated user's profile and roles.
func (h *AuthHandler) User(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	info, err := h.authUc.CurrentUser(c.Request().Context(), principal.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	payload := userPayload{
		ID:    info.User.ID.String(),
		Email: info.User.Email,
		Name:  info.User.Name,
		Roles: info.Roles,
	}
	if info.User.LastLoginAt != nil {
		payload.LastLoginAt = info.User.LastLoginAt
	}

	return response.Success(c, http.StatusOK, payload, "")
}

// Check is the lightweight session probe polled by the frontend. A dead
// session answers 200 with valid=false plus whether a refresh attempt is worth
// making; only transport errors 5xx.
func (h *AuthHandler) Check(c echo.Context) error {
	status := h.sessionUc.CheckSession(c.Request().Context(),
		cookie.Read(c, cookie.AccessToken), cookie.Read(c, cookie.RefreshToken))

	payload := map[string]any{
		"valid":      status.Valid,
		"canRefresh": status.CanRefresh,
	}
	if status.Valid {
		payload["userId"] = status.UserID.String()
		payload["email"] = status.Email
		payload["roles"] = status.Roles
		payload["expiresAt"] = status.ExpiresAt
	} else {
		payload["reason"] = status.Reason
		payload["loginUrl"] = h.cfg.Auth.LoginURL
	}

	return response.Success(c, http.StatusOK, payload, "")
}

// redirectToError sends the browser to the configured login error page.
func (h *AuthHandler) redirectToError(c echo.Context, reason string) error {
	target := h.cfg.Auth.LoginErrorURL
	if target == "" {
		target = h.cfg.Auth.FrontendURL
	}

	return c.Redirect(http.StatusFound, target+"?error="+url.QueryEscape(reason))
}
