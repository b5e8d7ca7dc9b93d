// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"time"

	deliverycontext "permitdesk/internal/delivery/context"
	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/domain/service"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	oidcSvc   service.OIDCService
	sessionUc usecase.SessionUsecase
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	oidcSvc service.OIDCService,
	sessionUc usecase.SessionUsecase,
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		oidcSvc:   oidcSvc,
		sessionUc: sessionUc,
		txManager: txManager,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BeginLogin builds the provider authorization URL with fresh state and nonce.
func (srv *authService) BeginLogin(ctx context.Context) (*usecase.LoginRedirect, error) {
	state, err := randomParam()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate state")
	}
	nonce, err := randomParam()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	return &usecase.LoginRedirect{
		URL:   srv.oidcSvc.AuthCodeURL(state, nonce),
		State: state,
		Nonce: nonce,
	}, nil
}

// HandleCallback exchanges the authorization code, provisions the user from
// the verified identity claims, and mints the session token pair.
//
// Provisioning is split into a fatal and a non-fatal phase. Without a user row
// there is nothing to key tokens on, so failing to obtain one aborts the
// login. Syncing mutable profile fields and role assignments is best-effort:
// a transient database problem there must not lock the user out, and the
// token's roles come from the verified claims either way.
func (srv *authService) HandleCallback(ctx context.Context, input usecase.CallbackInput) (*usecase.LoginResult, error) {
	claims, err := srv.oidcSvc.Exchange(ctx, input.Code, input.Nonce)
	if err != nil {
		srv.log(ctx).Warn("Authorization code exchange failed", slog.Any("error", err))

		return nil, err
	}

	if claims.Subject == "" {
		return nil, domainerrors.ErrMissingSubject
	}

	user, err := srv.ensureUser(ctx, claims)
	if err != nil {
		srv.log(ctx).Error("User provisioning failed", slog.Any("error", err), slog.String("subject", claims.Subject))

		return nil, err
	}

	if err := srv.syncUser(ctx, user, claims); err != nil {
		// Best-effort: stale e-mail or role assignments are recoverable on the
		// next login; a locked-out user is not.
		srv.log(ctx).Warn("User sync failed, continuing with stale directory state",
			slog.Any("error", err), slog.Any("user_id", user.ID))
	}

	roles := entity.RoleNames(claims.Roles)
	pair, err := srv.sessionUc.GenerateTokenPair(ctx, usecase.GenerateTokenPairInput{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     roles,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Login completed", slog.Any("user_id", user.ID), slog.String("subject", claims.Subject))

	return &usecase.LoginResult{
		User:         user,
		Roles:        roles,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// ensureUser resolves the subject to a local user row, creating one on first
// login. Failures here are fatal to the login attempt.
func (srv *authService) ensureUser(ctx context.Context, claims *service.IdentityClaims) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByOIDCSubject(ctx, claims.Subject)
		if err == nil {
			if !found.Active {
				return domainerrors.ErrUserInactive
			}
			user = found

			return nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to look up user by subject")
		}

		// First login: create the row with the best display name available.
		user = &entity.User{
			OIDCSubject: claims.Subject,
			Email:       claims.Email,
			Name:        claims.DisplayName(),
			Active:      true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		srv.log(ctx).Info("Provisioned new user", slog.Any("user_id", user.ID), slog.String("subject", claims.Subject))

		return nil
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}

		return nil, domainerrors.ErrProvisioningFailed.WrapMessage(err.Error())
	}

	return user, nil
}

// syncUser refreshes the mutable profile fields, stamps the login time, and
// replaces the role assignment set with the claim-derived one (clear then
// insert). Unknown role names are skipped with a warning; roles are reference
// data and the auth flow never invents new ones.
func (srv *authService) syncUser(ctx context.Context, user *entity.User, claims *service.IdentityClaims) error {
	now := time.Now()

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if claims.Email != "" && (user.Email != claims.Email || user.Name != claims.DisplayName()) {
			user.Email = claims.Email
			user.Name = claims.DisplayName()
			if err := userRepo.Update(ctx, user); err != nil {
				return errors.Wrap(err, "failed to update user profile")
			}
		}

		if err := userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return errors.Wrap(err, "failed to stamp last login")
		}

		if err := userRepo.ClearRoles(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to clear role assignments")
		}
		for _, name := range claims.Roles {
			role, err := userRepo.FindRoleByName(ctx, name)
			if err != nil {
				if errors.Is(err, repository.ErrRoleNotFound) {
					srv.log(ctx).Warn("Skipping unknown role from identity provider",
						slog.String("role", name), slog.Any("user_id", user.ID))

					continue
				}

				return errors.Wrap(err, "failed to look up role")
			}
			if err := userRepo.AssignRole(ctx, user.ID, role.ID, "oidc"); err != nil {
				return errors.Wrap(err, "failed to assign role")
			}
		}

		user.LastLoginAt = &now

		return nil
	})
}

// CurrentUser returns the profile and roles for an authenticated user.
func (srv *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*usecase.UserInfo, error) {
	var info *usecase.UserInfo

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		roles, err := userRepo.FindRolesByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to load user roles")
		}

		info = &usecase.UserInfo{
			User:  user,
			Roles: roleNames(roles),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// randomParam returns a URL-safe random value for OAuth state and nonce parameters.
func randomParam() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
