// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deliverycontext "permitdesk/internal/delivery/context"
	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// applicationService implements the ApplicationUsecase interface.
type applicationService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewApplicationService is the constructor for applicationService.
func NewApplicationService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.ApplicationUsecase {
	return &applicationService{
		txManager: txManager,
		logger:    logger,
	}
}

func (srv *applicationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SubmitApplication lodges a new application for the authenticated user.
func (srv *applicationService) SubmitApplication(ctx context.Context, input usecase.SubmitApplicationInput) (*entity.Application, error) {
	now := time.Now()
	app := &entity.Application{
		Reference:   newReference(now),
		ApplicantID: input.ApplicantID,
		Kind:        strings.ToUpper(strings.TrimSpace(input.Kind)),
		Summary:     strings.TrimSpace(input.Summary),
		Status:      entity.ApplicationStatusSubmitted,
		SubmittedAt: &now,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		appRepo := repoFactory.ApplicationRepo()

		user, err := userRepo.FindByID(ctx, input.ApplicantID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find applicant")
		}
		if !user.Active {
			return domainerrors.ErrUserInactive
		}

		if err := appRepo.Create(ctx, app); err != nil {
			return errors.Wrap(err, "failed to create application")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to submit application", slog.Any("error", err), slog.Any("applicant_id", input.ApplicantID))

		return nil, err
	}
	srv.log(ctx).Info("Application submitted", slog.Any("application_id", app.ID), slog.String("reference", app.Reference))

	return app, nil
}

// GetApplication fetches one application. Applicants see their own
// applications; anyone else needs a reviewer or admin role.
func (srv *applicationService) GetApplication(ctx context.Context, principal *entity.Principal, id uuid.UUID) (*entity.Application, error) {
	var app *entity.Application

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.ApplicationRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrApplicationNotFound) {
				return domainerrors.ErrApplicationNotFound
			}

			return errors.Wrap(err, "failed to find application")
		}

		if found.ApplicantID != principal.UserID &&
			!principal.HasRole(entity.RoleReviewer) &&
			!principal.HasRole(entity.RoleAdmin) {
			return domainerrors.ErrForbidden
		}
		app = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ListOwnApplications lists the authenticated user's applications, newest first.
func (srv *applicationService) ListOwnApplications(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error) {
	var apps []*entity.Application

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.ApplicationRepo().FindByApplicantID(ctx, applicantID)
		if err != nil {
			return errors.Wrap(err, "failed to list applications")
		}
		apps = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list applications", slog.Any("error", err), slog.Any("applicant_id", applicantID))

		return nil, err
	}

	return apps, nil
}

// newReference builds a human-quotable application reference like "APP-20260829-3F2A1B".
func newReference(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])

	return fmt.Sprintf("APP-%s-%s", now.Format("20060102"), suffix)
}
