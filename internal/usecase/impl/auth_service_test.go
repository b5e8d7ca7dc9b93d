package impl

import (
	"context"
	"testing"
	"time"

	"permitdesk/internal/domain/entity"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/domain/service"
	mockRepo "permitdesk/internal/mocks/repository"
	mockSvc "permitdesk/internal/mocks/service"
	mockUc "permitdesk/internal/mocks/usecase"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_BeginLogin(t *testing.T) {
	oidcSvc := new(mockSvc.MockOIDCService)
	oidcSvc.On("AuthCodeURL", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return("https://idp.example.org/authorize?x=1")

	svc := NewAuthService(oidcSvc, new(mockUc.MockSessionUsecase), &mockRepo.TxManager{}, testLogger())

	first, err := svc.BeginLogin(context.Background())
	require.NoError(t, err)
	second, err := svc.BeginLogin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://idp.example.org/authorize?x=1", first.URL)
	assert.NotEmpty(t, first.State)
	assert.NotEmpty(t, first.Nonce)
	assert.NotEqual(t, first.State, second.State)
	assert.NotEqual(t, first.Nonce, second.Nonce)
}

func TestAuthService_HandleCallback_MissingSubjectIsFatal(t *testing.T) {
	ctx := context.Background()

	oidcSvc := new(mockSvc.MockOIDCService)
	userRepo := new(mockRepo.MockUserRepository)
	oidcSvc.On("Exchange", ctx, "code", "nonce").
		Return(&service.IdentityClaims{Subject: "", Email: "a@example.org"}, nil)

	svc := NewAuthService(oidcSvc, new(mockUc.MockSessionUsecase),
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	result, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "code", Nonce: "nonce"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domainerrors.ErrMissingSubject))
	// No user row may be created for a subjectless identity.
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_HandleCallback_ExchangeFailure(t *testing.T) {
	ctx := context.Background()

	oidcSvc := new(mockSvc.MockOIDCService)
	oidcSvc.On("Exchange", ctx, "bad-code", "nonce").Return(nil, domainerrors.ErrOIDCExchangeFailed)

	svc := NewAuthService(oidcSvc, new(mockUc.MockSessionUsecase), &mockRepo.TxManager{}, testLogger())

	_, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "bad-code", Nonce: "nonce"})

	assert.True(t, errors.Is(err, domainerrors.ErrOIDCExchangeFailed))
}

func TestAuthService_HandleCallback_FirstLoginProvisionsUser(t *testing.T) {
	ctx := context.Background()
	roleID := uuid.New()

	oidcSvc := new(mockSvc.MockOIDCService)
	userRepo := new(mockRepo.MockUserRepository)
	sessionUc := new(mockUc.MockSessionUsecase)

	claims := &service.IdentityClaims{
		Subject: "subject-42",
		Email:   "new@example.org",
		Name:    "New Applicant",
		Roles:   []string{entity.RoleUser},
	}
	oidcSvc.On("Exchange", ctx, "code", "nonce").Return(claims, nil)

	userRepo.On("FindByOIDCSubject", ctx, "subject-42").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(user *entity.User) bool {
		return user.OIDCSubject == "subject-42" && user.Email == "new@example.org" && user.Active
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(nil)
	userRepo.On("UpdateLastLogin", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil)
	userRepo.On("ClearRoles", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
	userRepo.On("FindRoleByName", ctx, entity.RoleUser).Return(&entity.Role{ID: roleID, Name: entity.RoleUser}, nil)
	userRepo.On("AssignRole", ctx, mock.AnythingOfType("uuid.UUID"), roleID, "oidc").Return(nil)

	sessionUc.On("GenerateTokenPair", ctx, mock.MatchedBy(func(input usecase.GenerateTokenPairInput) bool {
		return input.Email == "new@example.org" && input.Roles.Contains(entity.RoleUser)
	})).Return(&usecase.TokenPairOutput{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}, nil)

	svc := NewAuthService(oidcSvc, sessionUc,
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	result, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "code", Nonce: "nonce"})

	require.NoError(t, err)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, "refresh", result.RefreshToken)
	assert.Equal(t, "subject-42", result.User.OIDCSubject)
	userRepo.AssertExpectations(t)
	sessionUc.AssertExpectations(t)
}

func TestAuthService_HandleCallback_UnknownRoleSkipped(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	oidcSvc := new(mockSvc.MockOIDCService)
	userRepo := new(mockRepo.MockUserRepository)
	sessionUc := new(mockUc.MockSessionUsecase)

	claims := &service.IdentityClaims{
		Subject: "subject-7",
		Email:   "known@example.org",
		Roles:   []string{"ROLE_FROM_ANOTHER_REALM"},
	}
	user := &entity.User{ID: userID, OIDCSubject: "subject-7", Email: "known@example.org", Name: "known@example.org", Active: true}

	oidcSvc.On("Exchange", ctx, "code", "nonce").Return(claims, nil)
	userRepo.On("FindByOIDCSubject", ctx, "subject-7").Return(user, nil)
	userRepo.On("UpdateLastLogin", ctx, userID, mock.AnythingOfType("time.Time")).Return(nil)
	userRepo.On("ClearRoles", ctx, userID).Return(nil)
	userRepo.On("FindRoleByName", ctx, "ROLE_FROM_ANOTHER_REALM").Return(nil, repository.ErrRoleNotFound)
	sessionUc.On("GenerateTokenPair", ctx, mock.Anything).
		Return(&usecase.TokenPairOutput{AccessToken: "a", RefreshToken: "r"}, nil)

	svc := NewAuthService(oidcSvc, sessionUc,
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	result, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "code", Nonce: "nonce"})

	require.NoError(t, err)
	assert.NotNil(t, result)
	userRepo.AssertNotCalled(t, "AssignRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_HandleCallback_SyncFailureDoesNotBlockLogin(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	oidcSvc := new(mockSvc.MockOIDCService)
	userRepo := new(mockRepo.MockUserRepository)
	sessionUc := new(mockUc.MockSessionUsecase)

	claims := &service.IdentityClaims{Subject: "subject-9", Email: "ok@example.org", Roles: []string{entity.RoleUser}}
	user := &entity.User{ID: userID, OIDCSubject: "subject-9", Email: "ok@example.org", Name: "ok@example.org", Active: true}

	oidcSvc.On("Exchange", ctx, "code", "nonce").Return(claims, nil)
	userRepo.On("FindByOIDCSubject", ctx, "subject-9").Return(user, nil)
	// Transient directory outage during sync.
	userRepo.On("UpdateLastLogin", ctx, userID, mock.AnythingOfType("time.Time")).
		Return(errors.New("connection refused"))
	sessionUc.On("GenerateTokenPair", ctx, mock.Anything).
		Return(&usecase.TokenPairOutput{AccessToken: "a", RefreshToken: "r"}, nil)

	svc := NewAuthService(oidcSvc, sessionUc,
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	result, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "code", Nonce: "nonce"})

	require.NoError(t, err)
	assert.Equal(t, "a", result.AccessToken)
}

func TestAuthService_HandleCallback_InactiveUserRejected(t *testing.T) {
	ctx := context.Background()

	oidcSvc := new(mockSvc.MockOIDCService)
	userRepo := new(mockRepo.MockUserRepository)

	claims := &service.IdentityClaims{Subject: "subject-3", Email: "gone@example.org"}
	user := &entity.User{ID: uuid.New(), OIDCSubject: "subject-3", Active: false}

	oidcSvc.On("Exchange", ctx, "code", "nonce").Return(claims, nil)
	userRepo.On("FindByOIDCSubject", ctx, "subject-3").Return(user, nil)

	svc := NewAuthService(oidcSvc, new(mockUc.MockSessionUsecase),
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	_, err := svc.HandleCallback(ctx, usecase.CallbackInput{Code: "code", Nonce: "nonce"})

	assert.True(t, errors.Is(err, domainerrors.ErrUserInactive))
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	userRepo := new(mockRepo.MockUserRepository)
	userRepo.On("FindByID", ctx, userID).
		Return(&entity.User{ID: userID, Email: "a@example.org"}, nil)
	userRepo.On("FindRolesByUserID", ctx, userID).
		Return([]*entity.Role{{Name: entity.RoleUser}, {Name: entity.RoleReviewer}}, nil)

	svc := NewAuthService(new(mockSvc.MockOIDCService), new(mockUc.MockSessionUsecase),
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	info, err := svc.CurrentUser(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, info.User.ID)
	assert.Equal(t, entity.RoleNames{entity.RoleUser, entity.RoleReviewer}, info.Roles)
}

func TestAuthService_CurrentUser_NotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	userRepo := new(mockRepo.MockUserRepository)
	userRepo.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

	svc := NewAuthService(new(mockSvc.MockOIDCService), new(mockUc.MockSessionUsecase),
		&mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo}}, testLogger())

	_, err := svc.CurrentUser(ctx, userID)

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
