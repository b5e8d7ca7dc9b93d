// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// GenerateTokenPairInput carries the authenticated identity a new session is minted for.
type GenerateTokenPairInput struct {
	UserID    uuid.UUID
	Email     string
	Roles     entity.RoleNames
	ClientIP  string
	UserAgent string
}

// RefreshInput carries the opaque refresh token presented by the client.
type RefreshInput struct {
	RefreshToken string
	ClientIP     string
	UserAgent    string
}

// --- Output DTOs ---

// TokenPairOutput returns a freshly issued access/refresh token pair.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// SessionStatus is the lightweight session probe result for the check endpoint.
// When the access token is dead, CanRefresh tells the frontend whether calling
// refresh is worth it or whether a full re-login is needed, with Reason naming
// the business code behind the verdict.
type SessionStatus struct {
	Valid      bool
	CanRefresh bool
	Reason     string
	UserID     uuid.UUID
	Email      string
	Roles      entity.RoleNames
	ExpiresAt  time.Time
}

// CleanupResult reports how many stale rows the maintenance sweep removed.
type CleanupResult struct {
	RefreshTokensPurged    int64
	BlacklistEntriesPurged int64
}

// SessionUsecase defines the interface for token and session lifecycle operations.
// This is the contract that the delivery layer (API handlers, middleware, workers) depends on.
type SessionUsecase interface {
	// GenerateTokenPair mints a signed access token and an opaque refresh token,
	// persisting the refresh token's hash as the session record.
	GenerateTokenPair(ctx context.Context, input GenerateTokenPairInput) (*TokenPairOutput, error)

	// RefreshAccessToken exchanges a valid refresh token for a new access token.
	// Failures discriminate between unknown, revoked, and expired tokens.
	RefreshAccessToken(ctx context.Context, input RefreshInput) (*TokenPairOutput, error)

	// ValidateAccessToken verifies the token signature, expiry, and blacklist in
	// one pass. It returns the authenticated principal and true on success, and
	// (nil, false) on any failure; callers never learn why validation failed.
	ValidateAccessToken(ctx context.Context, accessToken string) (*entity.Principal, bool)

	// RevokeAccessToken blacklists the token's jti until its natural expiry.
	// Best-effort: malformed or already-expired tokens are ignored.
	RevokeAccessToken(ctx context.Context, accessToken string, reason entity.RevocationReason) error

	// RevokeRefreshToken revokes the session identified by the raw refresh token.
	RevokeRefreshToken(ctx context.Context, refreshToken string, reason entity.RevocationReason) error

	// RevokeAllSessionsForUser revokes every active refresh token the user owns.
	RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID, reason entity.RevocationReason) error

	// CheckSession reports whether the access token still identifies a live
	// session and, when it does not, whether the refresh token could revive it.
	// A dead session is a normal answer here, never an error.
	CheckSession(ctx context.Context, accessToken, refreshToken string) *SessionStatus

	// CleanupExpiredTokens purges expired refresh tokens and spent blacklist rows.
	CleanupExpiredTokens(ctx context.Context) (*CleanupResult, error)
}
