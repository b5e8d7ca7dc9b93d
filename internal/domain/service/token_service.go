// Package service defines domain-service contracts consumed by the use cases.
package service

import (
	"time"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// AccessClaims is the verified claim set of an access token. Values are only
// ever populated by TokenService.VerifyAccessToken, so holding an AccessClaims
// implies the token's signature and expiry already checked out.
type AccessClaims struct {
	UserID   uuid.UUID        // Subject claim, the local user id.
	JTI      string           // Unique token id, the revocation-list key.
	Email    string           // Email claim carried for display purposes.
	Roles    entity.RoleNames // Role names carried for stateless authorization.
	IssuedAt time.Time        // When the token was minted.
	Expiry   time.Time        // The token's own expiry instant.
}

// TokenService mints and verifies the application's own credentials: signed
// self-contained access tokens and opaque random refresh tokens. It is pure
// and stateless; revocation is the caller's concern.
type TokenService interface {
	// IssueAccessToken builds and signs an access token for the user. Each call
	// embeds a fresh jti even for identical inputs.
	IssueAccessToken(userID uuid.UUID, email string, roles entity.RoleNames) (string, error)

	// VerifyAccessToken checks signature, structure and expiry, and returns the
	// parsed claims. Fails with domainerrors.ErrTokenInvalid for malformed,
	// tampered or expired input. Revoked-but-valid tokens verify fine here.
	VerifyAccessToken(token string) (*AccessClaims, error)

	// NewRefreshToken returns a fresh opaque random credential. It carries no
	// claims; treat it as a capability token.
	NewRefreshToken() (string, error)

	// HashToken returns the deterministic SHA-256 hex digest under which a
	// refresh token is stored and looked up. The raw token is never persisted.
	HashToken(raw string) string

	// AccessTokenTTL returns the configured access-token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration
}
