// Package cookie centralizes the names and attributes of the auth cookies so
// handlers and middleware cannot drift apart.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// AccessToken holds the signed access token, readable by every protected route.
	AccessToken = "access_token"
	// RefreshToken holds the opaque refresh token, scoped to the refresh endpoint.
	RefreshToken = "refresh_token"
	// OAuthState pins the state parameter between login start and callback.
	OAuthState = "oauth_state"
	// OAuthNonce pins the nonce parameter for ID token verification.
	OAuthNonce = "oauth_nonce"

	// loginFlowTTL bounds how long a login round-trip to the provider may take.
	loginFlowTTL = 10 * time.Minute
)

// Set writes an http-only auth cookie. Tokens never reach page scripts; the
// browser carries them implicitly.
func Set(c echo.Context, name, value string, maxAge time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetLoginFlow writes a short-lived cookie for the state/nonce round-trip.
func SetLoginFlow(c echo.Context, name, value string, secure bool) {
	Set(c, name, value, loginFlowTTL, secure)
}

// Clear expires a cookie immediately.
func Clear(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the named cookie's value, or "" when absent.
func Read(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil || ck == nil {
		return ""
	}

	return ck.Value
}
