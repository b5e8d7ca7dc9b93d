// Package service defines domain-service contracts consumed by the use cases.
package service

import "context"

// IdentityClaims is the claim set extracted from a signature-verified ID
// token. Claims are taken entirely from the ID token; the provider's userinfo
// endpoint is never called, so browser-facing and server-facing provider URLs
// cannot disagree about the issuer.
type IdentityClaims struct {
	Subject           string   // The provider's immutable user id ('sub').
	Email             string   // Email claim, may be empty.
	Name              string   // Full display name, may be empty.
	PreferredUsername string   // Fallback display name.
	Roles             []string // Normalized role names from realm and client claims.
}

// DisplayName picks the best available human-readable name: full name, then
// preferred username, then email.
func (c *IdentityClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}

	return c.Email
}

// OIDCService is the integration boundary with the identity provider: it
// builds the authorization redirect, exchanges the code, and validates the
// returned ID token.
type OIDCService interface {
	// AuthCodeURL builds the provider authorization URL for the given state and
	// nonce, including any configured provider-specific extra parameters.
	AuthCodeURL(state, nonce string) string

	// Exchange redeems an authorization code and returns the verified identity
	// claims from the ID token in the provider's response. The nonce must match
	// the one sent with the authorization request.
	Exchange(ctx context.Context, code, nonce string) (*IdentityClaims, error)
}
