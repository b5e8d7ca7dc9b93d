// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for token persistence.
var (
	// ErrRefreshTokenNotFound is returned when no refresh token matches the lookup.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrNoRowsAffected is returned when a write that must touch a row touches none.
	ErrNoRowsAffected = errors.New("no rows affected")
)

// TokenRepository is the durable record of refresh-token sessions and the
// access-token revocation list. All revocation writes are idempotent: revoking
// an already-revoked credential is a no-op, and the first revocation wins
// (RevokedAt never changes after the first write).
type TokenRepository interface {
	// CreateRefreshToken persists a new active refresh-token row.
	// Returns ErrNoRowsAffected if the insert stored nothing.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a refresh token record by its stored
	// hash, regardless of its revoked/expired state; the caller discriminates.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// MarkRefreshTokenUsed stamps the token's last-used time.
	MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error

	// RevokeRefreshToken flips the revoked flag on a single token.
	// First-write-wins: a second call leaves RevokedAt untouched and returns nil.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time, reason entity.RevocationReason) error

	// RevokeAllRefreshTokensForUser revokes every active token owned by the user.
	RevokeAllRefreshTokensForUser(ctx context.Context, userID uuid.UUID, at time.Time, reason entity.RevocationReason) error

	// DeleteExpiredRefreshTokens purges refresh-token rows past their expiry.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)

	// BlacklistAccessToken records a revoked access token by its jti. Inserting
	// a jti that is already blacklisted is a no-op.
	BlacklistAccessToken(ctx context.Context, token *entity.RevokedAccessToken) error

	// IsAccessTokenBlacklisted reports whether the jti is on the revocation list.
	// This sits on the request-validation hot path and must stay a single
	// indexed lookup.
	IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredBlacklistEntries purges entries whose original token expiry
	// has passed; the expiry check alone rejects those tokens from now on.
	DeleteExpiredBlacklistEntries(ctx context.Context, before time.Time) (int64, error)
}
