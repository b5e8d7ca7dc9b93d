// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrApplicationNotFound is returned when an application is not found.
var ErrApplicationNotFound = errors.New("application not found")

// ApplicationRepository persists permit applications for the authenticated API
// surface. The review workflow has its own, richer contract elsewhere.
type ApplicationRepository interface {
	// Create persists a new application.
	Create(ctx context.Context, app *entity.Application) error

	// FindByID retrieves a single application.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)

	// FindByApplicantID lists a user's applications, newest first.
	FindByApplicantID(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error)
}
