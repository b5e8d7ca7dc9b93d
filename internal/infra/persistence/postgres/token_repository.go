// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements the domain.TokenRepository interface using GORM.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// CreateRefreshToken persists a new active refresh-token row.
func (repo *tokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := fromRefreshTokenDomain(token)

	result := repo.db.WithContext(ctx).Create(tokenM)
	if result.Error != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrPersistenceFailed.WrapMessage("refresh token hash already exists")
		}
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrPersistenceFailed.WrapMessage("invalid user reference")
		}
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrPersistenceFailed.WrapMessage("missing required token information")
		}
		// For other database errors, return a generic database error
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to create refresh token")
	}

	if result.RowsAffected == 0 {
		return repository.ErrNoRowsAffected
	}

	// Update the entity with generated values
	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindRefreshTokenByHash retrieves a refresh token record by its securely stored hash.
// Revoked and expired rows are returned as-is; discrimination between the
// invalid/revoked/expired outcomes belongs to the session service.
func (repo *tokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	if err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh token by hash")
	}

	return toRefreshTokenDomain(&tokenM), nil
}

// MarkRefreshTokenUsed stamps the token's last-used time.
func (repo *tokenRepository) MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("id = ?", id).
		Update("last_used_at", at)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark refresh token used")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRefreshTokenNotFound
	}

	return nil
}

// RevokeRefreshToken flips the revoked flag on a single token. The conditional
// update makes the first revocation win: a second call matches zero rows and
// the original RevokedAt and reason survive.
func (repo *tokenRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_at":     at,
			"revoked_reason": string(reason),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to revoke refresh token")
	}

	// Zero rows means the token was already revoked or never existed; both are
	// treated as success so revocation stays idempotent.
	return nil
}

// RevokeAllRefreshTokensForUser revokes every active token owned by the user.
func (repo *tokenRepository) RevokeAllRefreshTokensForUser(ctx context.Context, userID uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_at":     at,
			"revoked_reason": string(reason),
		}).Error; err != nil {
		return errors.Wrap(err, "failed to revoke refresh tokens for user")
	}

	return nil
}

// DeleteExpiredRefreshTokens removes all refresh tokens past their expiry.
func (repo *tokenRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired refresh tokens")
	}

	return result.RowsAffected, nil
}

// BlacklistAccessToken records a revoked access token by its jti.
func (repo *tokenRepository) BlacklistAccessToken(ctx context.Context, token *entity.RevokedAccessToken) error {
	tokenM := fromRevokedAccessTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// The jti is already on the list; first revocation wins.
			return nil
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to blacklist access token")
	}

	token.ID = tokenM.ID

	return nil
}

// IsAccessTokenBlacklisted reports whether the jti is on the revocation list.
func (repo *tokenRepository) IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.RevokedAccessTokenModel{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check access token blacklist")
	}

	return count > 0, nil
}

// DeleteExpiredBlacklistEntries purges entries whose original token expiry has passed.
func (repo *tokenRepository) DeleteExpiredBlacklistEntries(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("original_expiry < ?", before).
		Delete(&model.RevokedAccessTokenModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired blacklist entries")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toRefreshTokenDomain converts a GORM RefreshTokenModel to a domain RefreshToken entity.
func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	if data == nil {
		return nil
	}

	return &entity.RefreshToken{
		ID:            data.ID,
		UserID:        data.UserID,
		TokenHash:     data.TokenHash,
		ExpiresAt:     data.ExpiresAt,
		CreatedAt:     data.CreatedAt,
		LastUsedAt:    data.LastUsedAt,
		ClientIP:      data.ClientIP,
		UserAgent:     data.UserAgent,
		Revoked:       data.Revoked,
		RevokedAt:     data.RevokedAt,
		RevokedReason: entity.RevocationReason(data.RevokedReason),
	}
}

// fromRefreshTokenDomain converts a domain RefreshToken entity to a GORM RefreshTokenModel.
func fromRefreshTokenDomain(data *entity.RefreshToken) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:            data.ID,
		UserID:        data.UserID,
		TokenHash:     data.TokenHash,
		ExpiresAt:     data.ExpiresAt,
		CreatedAt:     data.CreatedAt,
		LastUsedAt:    data.LastUsedAt,
		ClientIP:      data.ClientIP,
		UserAgent:     data.UserAgent,
		Revoked:       data.Revoked,
		RevokedAt:     data.RevokedAt,
		RevokedReason: string(data.RevokedReason),
	}
}

// fromRevokedAccessTokenDomain converts a domain RevokedAccessToken entity to its GORM model.
func fromRevokedAccessTokenDomain(data *entity.RevokedAccessToken) *model.RevokedAccessTokenModel {
	if data == nil {
		return nil
	}

	return &model.RevokedAccessTokenModel{
		ID:             data.ID,
		JTI:            data.JTI,
		UserID:         data.UserID,
		OriginalExpiry: data.OriginalExpiry,
		RevokedAt:      data.RevokedAt,
		Reason:         string(data.Reason),
	}
}
