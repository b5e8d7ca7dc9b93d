// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// applicationRepository implements the domain.ApplicationRepository interface using GORM.
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository is the constructor for applicationRepository.
func NewApplicationRepository(db *gorm.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create persists a new application.
func (repo *applicationRepository) Create(ctx context.Context, app *entity.Application) error {
	appM := fromApplicationDomain(app)

	if err := repo.db.WithContext(ctx).Create(appM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("application reference already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid applicant reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create application")
	}

	app.ID = appM.ID
	app.CreatedAt = appM.CreatedAt
	app.UpdatedAt = appM.UpdatedAt

	return nil
}

// FindByID retrieves a single application by its unique ID.
func (repo *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var appM model.ApplicationModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&appM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrApplicationNotFound
		}

		return nil, errors.Wrap(err, "failed to find application by id")
	}

	return toApplicationDomain(&appM), nil
}

// FindByApplicantID lists a user's applications, newest first.
func (repo *applicationRepository) FindByApplicantID(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error) {
	var appModels []*model.ApplicationModel
	if err := repo.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&appModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find applications by applicant id")
	}

	apps := make([]*entity.Application, 0, len(appModels))
	for _, appM := range appModels {
		apps = append(apps, toApplicationDomain(appM))
	}

	return apps, nil
}

// --- Mapper Functions ---

// toApplicationDomain converts a GORM ApplicationModel to a domain Application entity.
func toApplicationDomain(data *model.ApplicationModel) *entity.Application {
	if data == nil {
		return nil
	}

	return &entity.Application{
		ID:          data.ID,
		Reference:   data.Reference,
		ApplicantID: data.ApplicantID,
		Kind:        data.Kind,
		Summary:     data.Summary,
		Status:      entity.ApplicationStatus(data.Status),
		SubmittedAt: data.SubmittedAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromApplicationDomain converts a domain Application entity to a GORM ApplicationModel.
func fromApplicationDomain(data *entity.Application) *model.ApplicationModel {
	if data == nil {
		return nil
	}

	return &model.ApplicationModel{
		ID:          data.ID,
		Reference:   data.Reference,
		ApplicantID: data.ApplicantID,
		Kind:        data.Kind,
		Summary:     data.Summary,
		Status:      string(data.Status),
		SubmittedAt: data.SubmittedAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
