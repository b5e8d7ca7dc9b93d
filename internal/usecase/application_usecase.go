// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// SubmitApplicationInput defines the data required to lodge a new application.
type SubmitApplicationInput struct {
	ApplicantID uuid.UUID
	Kind        string
	Summary     string
}

// ApplicationUsecase defines the interface for the authenticated application surface.
type ApplicationUsecase interface {
	// SubmitApplication lodges a new application for the authenticated user.
	SubmitApplication(ctx context.Context, input SubmitApplicationInput) (*entity.Application, error)

	// GetApplication fetches one application; non-owners need a reviewer role.
	GetApplication(ctx context.Context, principal *entity.Principal, id uuid.UUID) (*entity.Application, error)

	// ListOwnApplications lists the authenticated user's applications, newest first.
	ListOwnApplications(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error)
}
