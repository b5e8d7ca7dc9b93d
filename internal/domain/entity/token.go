// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RevocationReason records why a credential was revoked, for audit purposes.
type RevocationReason string

const (
	// RevocationReasonLogout marks tokens revoked by the user logging out.
	RevocationReasonLogout RevocationReason = "LOGOUT"
	// RevocationReasonAdminAction marks tokens revoked by an administrator.
	RevocationReasonAdminAction RevocationReason = "ADMIN_ACTION"
	// RevocationReasonSecurityBreach marks tokens revoked in response to a suspected compromise.
	RevocationReasonSecurityBreach RevocationReason = "SECURITY_BREACH"
	// RevocationReasonRotated marks refresh tokens replaced by rotation.
	RevocationReasonRotated RevocationReason = "ROTATED"
)

// RefreshToken represents a long-lived, opaque user session credential.
// Only a SHA-256 hash of the raw token is ever persisted; lookups re-hash the
// presented candidate and compare.
type RefreshToken struct {
	ID            uuid.UUID        // The unique ID for this refresh token record.
	UserID        uuid.UUID        // Links this session to the User it belongs to.
	TokenHash     string           // SHA-256 hex hash of the raw refresh token.
	ExpiresAt     time.Time        // When this refresh token expires and becomes invalid.
	CreatedAt     time.Time        // When this session was created (i.e., when the user logged in).
	LastUsedAt    *time.Time       // When this token last minted an access token.
	ClientIP      string           // Client IP captured at login, for session listings.
	UserAgent     string           // Client user agent captured at login.
	Revoked       bool             // Whether this token has been explicitly revoked.
	RevokedAt     *time.Time       // When the token was revoked; nil while active.
	RevokedReason RevocationReason // Why the token was revoked; empty while active.
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// RevokedAccessToken is a blacklist entry for an access token invalidated
// before its natural expiry. The entry only needs to outlive the token's
// original expiry; after that, the expiry check alone rejects the token.
type RevokedAccessToken struct {
	ID             uuid.UUID        // The unique ID for this blacklist entry.
	JTI            string           // The JWT ID claim of the revoked access token.
	UserID         uuid.UUID        // The user the token was issued to.
	OriginalExpiry time.Time        // The token's own expiry; the entry is purgeable after this.
	RevokedAt      time.Time        // When the token was blacklisted.
	Reason         RevocationReason // Why the token was blacklisted.
}

// TokenPair is the credential set handed to a client after authentication:
// a short-lived signed access token and a long-lived opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
