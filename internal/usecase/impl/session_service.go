// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"permitdesk/config"
	deliverycontext "permitdesk/internal/delivery/context"
	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/domain/service"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	tokenSvc           service.TokenService
	txManager          repository.TransactionManager
	tokenRepo          repository.TokenRepository
	logger             *slog.Logger
	allowSilentRefresh bool
	rotateRefresh      bool
}

// NewSessionService is the constructor for sessionService. The standalone token
// repository serves the validation hot path; every write goes through the
// transaction manager.
func NewSessionService(
	cfg *config.Config,
	tokenSvc service.TokenService,
	txManager repository.TransactionManager,
	tokenRepo repository.TokenRepository,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		tokenSvc:           tokenSvc,
		txManager:          txManager,
		tokenRepo:          tokenRepo,
		logger:             logger,
		allowSilentRefresh: cfg.Auth.AllowSilentRefresh,
		rotateRefresh:      cfg.Auth.RotateRefreshTokens,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GenerateTokenPair mints a signed access token and an opaque refresh token.
// The pair is only handed out once the refresh token's hash is durably stored:
// a persistence failure aborts the whole issuance.
func (srv *sessionService) GenerateTokenPair(ctx context.Context, input usecase.GenerateTokenPairInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Generating token pair", slog.Any("user_id", input.UserID))

	accessToken, err := srv.tokenSvc.IssueAccessToken(input.UserID, input.Email, input.Roles)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	rawRefresh, err := srv.tokenSvc.NewRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	now := time.Now()
	session := &entity.RefreshToken{
		UserID:    input.UserID,
		TokenHash: srv.tokenSvc.HashToken(rawRefresh),
		ExpiresAt: now.Add(srv.tokenSvc.RefreshTokenTTL()),
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TokenRepo().CreateRefreshToken(ctx, session); err != nil {
			return errors.Wrap(err, "failed to persist refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to generate token pair", slog.Any("error", err), slog.Any("user_id", input.UserID))

		return nil, errors.Wrap(domainerrors.ErrPersistenceFailed, err.Error())
	}
	srv.log(ctx).Info("Issued token pair", slog.Any("user_id", input.UserID), slog.Any("session_id", session.ID))

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresAt:    now.Add(srv.tokenSvc.AccessTokenTTL()),
	}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
// The failure modes are deliberately distinct so the frontend can tell a stale
// credential (sign in again) from a revoked one (session was ended elsewhere).
func (srv *sessionService) RefreshAccessToken(ctx context.Context, input usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	if !srv.allowSilentRefresh {
		return nil, domainerrors.ErrRefreshDisabled
	}

	tokenHash := srv.tokenSvc.HashToken(input.RefreshToken)
	now := time.Now()

	var output *usecase.TokenPairOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.TokenRepo()
		userRepo := repoFactory.UserRepo()

		// 1. Look up the session by the presented token's hash.
		session, err := tokenRepo.FindRefreshTokenByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrSessionInvalid
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		// 2. Discriminate the dead-session cases. Revocation is checked before
		// expiry so a revoked token keeps reporting revoked after it expires.
		if session.Revoked {
			return domainerrors.ErrSessionRevoked
		}
		if session.Expired(now) {
			return domainerrors.ErrSessionExpired
		}

		// 3. The user must still exist and be active.
		user, err := userRepo.FindByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrSessionInvalid.WrapMessage("session user no longer exists")
			}

			return errors.Wrap(err, "failed to find session user")
		}
		if !user.Active {
			return domainerrors.ErrSessionRevoked.WrapMessage("user account deactivated")
		}

		// 4. Mint the new access token from the user's current roles, not the
		// roles at login time.
		roles, err := userRepo.FindRolesByUserID(ctx, user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to load user roles")
		}

		accessToken, err := srv.tokenSvc.IssueAccessToken(user.ID, user.Email, roleNames(roles))
		if err != nil {
			return errors.Wrap(err, "failed to issue access token")
		}

		if err := tokenRepo.MarkRefreshTokenUsed(ctx, session.ID, now); err != nil {
			return errors.Wrap(err, "failed to mark refresh token used")
		}

		refreshToken := input.RefreshToken
		if srv.rotateRefresh {
			refreshToken, err = srv.rotateRefreshToken(ctx, tokenRepo, session, input, now)
			if err != nil {
				return err
			}
		}

		output = &usecase.TokenPairOutput{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    now.Add(srv.tokenSvc.AccessTokenTTL()),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh rejected", slog.Any("error", err))

		return nil, err
	}

	return output, nil
}

// rotateRefreshToken revokes the presented session and issues a replacement
// with the same expiry horizon. Runs inside the refresh transaction.
func (srv *sessionService) rotateRefreshToken(
	ctx context.Context,
	tokenRepo repository.TokenRepository,
	session *entity.RefreshToken,
	input usecase.RefreshInput,
	now time.Time,
) (string, error) {
	rawRefresh, err := srv.tokenSvc.NewRefreshToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate replacement refresh token")
	}

	if err := tokenRepo.RevokeRefreshToken(ctx, session.ID, now, entity.RevocationReasonRotated); err != nil {
		return "", errors.Wrap(err, "failed to revoke rotated refresh token")
	}

	replacement := &entity.RefreshToken{
		UserID:    session.UserID,
		TokenHash: srv.tokenSvc.HashToken(rawRefresh),
		ExpiresAt: session.ExpiresAt,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
	}
	if err := tokenRepo.CreateRefreshToken(ctx, replacement); err != nil {
		return "", errors.Wrap(err, "failed to persist replacement refresh token")
	}

	return rawRefresh, nil
}

// ValidateAccessToken verifies signature, expiry, and the revocation blacklist.
// Any failure yields (nil, false); this path guards every protected request and
// never distinguishes why a token was rejected.
func (srv *sessionService) ValidateAccessToken(ctx context.Context, accessToken string) (*entity.Principal, bool) {
	claims, err := srv.tokenSvc.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, false
	}

	blacklisted, err := srv.tokenRepo.IsAccessTokenBlacklisted(ctx, claims.JTI)
	if err != nil {
		// Fail closed: an unreachable blacklist rejects the token.
		srv.log(ctx).Error("Blacklist lookup failed", slog.Any("error", err))

		return nil, false
	}
	if blacklisted {
		return nil, false
	}

	return &entity.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, true
}

// RevokeAccessToken blacklists the token's jti until its natural expiry.
// A token that does not verify carries nothing to revoke, so parse and expiry
// failures are swallowed.
func (srv *sessionService) RevokeAccessToken(ctx context.Context, accessToken string, reason entity.RevocationReason) error {
	claims, err := srv.tokenSvc.VerifyAccessToken(accessToken)
	if err != nil {
		srv.log(ctx).Debug("Skipping revocation of unverifiable access token", slog.Any("error", err))

		return nil
	}

	entry := &entity.RevokedAccessToken{
		JTI:            claims.JTI,
		UserID:         claims.UserID,
		OriginalExpiry: claims.Expiry,
		RevokedAt:      time.Now(),
		Reason:         reason,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TokenRepo().BlacklistAccessToken(ctx, entry); err != nil {
			return errors.Wrap(err, "failed to blacklist access token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke access token", slog.Any("error", err), slog.Any("user_id", claims.UserID))

		return errors.Wrap(domainerrors.ErrPersistenceFailed, err.Error())
	}
	srv.log(ctx).Info("Access token revoked", slog.Any("user_id", claims.UserID), slog.String("reason", string(reason)))

	return nil
}

// RevokeRefreshToken revokes the session identified by the raw refresh token.
// An unknown token is already as dead as revocation would make it, so the call
// is idempotent across unknown and already-revoked credentials.
func (srv *sessionService) RevokeRefreshToken(ctx context.Context, refreshToken string, reason entity.RevocationReason) error {
	tokenHash := srv.tokenSvc.HashToken(refreshToken)
	now := time.Now()

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.TokenRepo()

		session, err := tokenRepo.FindRefreshTokenByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		if err := tokenRepo.RevokeRefreshToken(ctx, session.ID, now, reason); err != nil {
			return errors.Wrap(err, "failed to revoke refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke refresh token", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrPersistenceFailed, err.Error())
	}

	return nil
}

// RevokeAllSessionsForUser revokes every active refresh token the user owns.
func (srv *sessionService) RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID, reason entity.RevocationReason) error {
	srv.log(ctx).Info("Revoking all sessions", slog.Any("user_id", userID), slog.String("reason", string(reason)))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TokenRepo().RevokeAllRefreshTokensForUser(ctx, userID, time.Now(), reason); err != nil {
			return errors.Wrap(err, "failed to revoke user sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("error", err), slog.Any("user_id", userID))

		return errors.Wrap(domainerrors.ErrPersistenceFailed, err.Error())
	}

	return nil
}

// CheckSession reports whether the access token still identifies a live session.
// A dead session is a normal answer here, not an error: the probe additionally
// tells the frontend whether the refresh token could still revive the session.
func (srv *sessionService) CheckSession(ctx context.Context, accessToken, refreshToken string) *usecase.SessionStatus {
	claims, err := srv.tokenSvc.VerifyAccessToken(accessToken)
	if err == nil {
		blacklisted, lookupErr := srv.tokenRepo.IsAccessTokenBlacklisted(ctx, claims.JTI)
		if lookupErr == nil && !blacklisted {
			return &usecase.SessionStatus{
				Valid:      true,
				CanRefresh: srv.allowSilentRefresh,
				UserID:     claims.UserID,
				Email:      claims.Email,
				Roles:      claims.Roles,
				ExpiresAt:  claims.Expiry,
			}
		}
	}

	status := &usecase.SessionStatus{Reason: domainerrors.ErrTokenInvalid.ErrorCode()}
	if canRefresh, reason := srv.refreshable(ctx, refreshToken); canRefresh {
		status.CanRefresh = true
	} else {
		status.Reason = reason
	}

	return status
}

// refreshable answers the probe's "is refresh worth trying" question with a
// read-only look at the session row. It mirrors the discrimination the refresh
// operation performs, without touching the row.
func (srv *sessionService) refreshable(ctx context.Context, refreshToken string) (bool, string) {
	if !srv.allowSilentRefresh {
		return false, domainerrors.ErrRefreshDisabled.ErrorCode()
	}
	if refreshToken == "" {
		return false, domainerrors.ErrSessionInvalid.ErrorCode()
	}

	session, err := srv.tokenRepo.FindRefreshTokenByHash(ctx, srv.tokenSvc.HashToken(refreshToken))
	if err != nil {
		return false, domainerrors.ErrSessionInvalid.ErrorCode()
	}
	if session.Revoked {
		return false, domainerrors.ErrSessionRevoked.ErrorCode()
	}
	if session.Expired(time.Now()) {
		return false, domainerrors.ErrSessionExpired.ErrorCode()
	}

	return true, ""
}

// CleanupExpiredTokens purges expired refresh tokens and blacklist entries whose
// original token expiry has passed.
func (srv *sessionService) CleanupExpiredTokens(ctx context.Context) (*usecase.CleanupResult, error) {
	now := time.Now()
	result := &usecase.CleanupResult{}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.TokenRepo()

		purged, err := tokenRepo.DeleteExpiredRefreshTokens(ctx, now)
		if err != nil {
			return errors.Wrap(err, "failed to purge expired refresh tokens")
		}
		result.RefreshTokensPurged = purged

		purged, err = tokenRepo.DeleteExpiredBlacklistEntries(ctx, now)
		if err != nil {
			return errors.Wrap(err, "failed to purge spent blacklist entries")
		}
		result.BlacklistEntriesPurged = purged

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Token cleanup failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to clean up expired tokens")
	}
	srv.log(ctx).Info("Token cleanup complete",
		slog.Int64("refresh_tokens_purged", result.RefreshTokensPurged),
		slog.Int64("blacklist_entries_purged", result.BlacklistEntriesPurged),
	)

	return result, nil
}

// roleNames flattens role entities into the normalized name list carried in claims.
func roleNames(roles []*entity.Role) entity.RoleNames {
	names := make(entity.RoleNames, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}

	return names
}
