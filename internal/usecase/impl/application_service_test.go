package impl

import (
	"context"
	"strings"
	"testing"

	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	mockRepo "permitdesk/internal/mocks/repository"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApplicationService_SubmitApplication_Success(t *testing.T) {
	ctx := context.Background()
	applicantID := uuid.New()

	userRepo := new(mockRepo.MockUserRepository)
	appRepo := new(mockRepo.MockApplicationRepository)
	userRepo.On("FindByID", ctx, applicantID).
		Return(&entity.User{ID: applicantID, Active: true}, nil)
	appRepo.On("Create", ctx, mock.MatchedBy(func(app *entity.Application) bool {
		return app.ApplicantID == applicantID &&
			app.Status == entity.ApplicationStatusSubmitted &&
			app.SubmittedAt != nil
	})).Return(nil)

	svc := NewApplicationService(
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo, Application: appRepo}}, testLogger())

	app, err := svc.SubmitApplication(ctx, usecase.SubmitApplicationInput{
		ApplicantID: applicantID,
		Kind:        "building",
		Summary:     "  Rear extension  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "BUILDING", app.Kind)
	assert.Equal(t, "Rear extension", app.Summary)
	assert.True(t, strings.HasPrefix(app.Reference, "APP-"))
}

func TestApplicationService_SubmitApplication_InactiveApplicant(t *testing.T) {
	ctx := context.Background()
	applicantID := uuid.New()

	userRepo := new(mockRepo.MockUserRepository)
	appRepo := new(mockRepo.MockApplicationRepository)
	userRepo.On("FindByID", ctx, applicantID).
		Return(&entity.User{ID: applicantID, Active: false}, nil)

	svc := NewApplicationService(
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo, Application: appRepo}}, testLogger())

	_, err := svc.SubmitApplication(ctx, usecase.SubmitApplicationInput{ApplicantID: applicantID, Kind: "event"})

	assert.True(t, errors.Is(err, domainerrors.ErrUserInactive))
	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApplicationService_GetApplication_Authorization(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	appID := uuid.New()
	app := &entity.Application{ID: appID, ApplicantID: ownerID}

	newService := func() usecase.ApplicationUsecase {
		appRepo := new(mockRepo.MockApplicationRepository)
		appRepo.On("FindByID", ctx, appID).Return(app, nil)

		return NewApplicationService(
			&mockRepo.TxManager{Factory: &mockRepo.Factory{Application: appRepo}}, testLogger())
	}

	t.Run("owner can read", func(t *testing.T) {
		got, err := newService().GetApplication(ctx, &entity.Principal{UserID: ownerID}, appID)
		require.NoError(t, err)
		assert.Equal(t, appID, got.ID)
	})

	t.Run("reviewer can read", func(t *testing.T) {
		principal := &entity.Principal{UserID: uuid.New(), Roles: entity.RoleNames{entity.RoleReviewer}}
		_, err := newService().GetApplication(ctx, principal, appID)
		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		principal := &entity.Principal{UserID: uuid.New(), Roles: entity.RoleNames{entity.RoleUser}}
		_, err := newService().GetApplication(ctx, principal, appID)
		assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
	})
}

func TestApplicationService_ListOwnApplications(t *testing.T) {
	ctx := context.Background()
	applicantID := uuid.New()

	appRepo := new(mockRepo.MockApplicationRepository)
	appRepo.On("FindByApplicantID", ctx, applicantID).
		Return([]*entity.Application{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	svc := NewApplicationService(
		&mockRepo.TxManager{Factory: &mockRepo.Factory{Application: appRepo}}, testLogger())

	apps, err := svc.ListOwnApplications(ctx, applicantID)

	require.NoError(t, err)
	assert.Len(t, apps, 2)
}
