// Package usecase provides testify mocks for the usecase contracts.
package usecase

import (
	"context"

	"permitdesk/internal/domain/entity"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionUsecase is a testify mock for usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

func (m *MockSessionUsecase) GenerateTokenPair(ctx context.Context, input usecase.GenerateTokenPairInput) (*usecase.TokenPairOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*usecase.TokenPairOutput), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockSessionUsecase) RefreshAccessToken(ctx context.Context, input usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*usecase.TokenPairOutput), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockSessionUsecase) ValidateAccessToken(ctx context.Context, accessToken string) (*entity.Principal, bool) {
	args := m.Called(ctx, accessToken)
	if principal := args.Get(0); principal != nil {
		return principal.(*entity.Principal), args.Bool(1)
	}

	return nil, args.Bool(1)
}

func (m *MockSessionUsecase) RevokeAccessToken(ctx context.Context, accessToken string, reason entity.RevocationReason) error {
	args := m.Called(ctx, accessToken, reason)

	return args.Error(0)
}

func (m *MockSessionUsecase) RevokeRefreshToken(ctx context.Context, refreshToken string, reason entity.RevocationReason) error {
	args := m.Called(ctx, refreshToken, reason)

	return args.Error(0)
}

func (m *MockSessionUsecase) RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID, reason entity.RevocationReason) error {
	args := m.Called(ctx, userID, reason)

	return args.Error(0)
}

func (m *MockSessionUsecase) CheckSession(ctx context.Context, accessToken, refreshToken string) *usecase.SessionStatus {
	args := m.Called(ctx, accessToken, refreshToken)

	return args.Get(0).(*usecase.SessionStatus)
}

func (m *MockSessionUsecase) CleanupExpiredTokens(ctx context.Context) (*usecase.CleanupResult, error) {
	args := m.Called(ctx)
	if result := args.Get(0); result != nil {
		return result.(*usecase.CleanupResult), args.Error(1)
	}

	return nil, args.Error(1)
}

// MockAuthUsecase is a testify mock for usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) BeginLogin(ctx context.Context) (*usecase.LoginRedirect, error) {
	args := m.Called(ctx)
	if redirect := args.Get(0); redirect != nil {
		return redirect.(*usecase.LoginRedirect), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAuthUsecase) HandleCallback(ctx context.Context, input usecase.CallbackInput) (*usecase.LoginResult, error) {
	args := m.Called(ctx, input)
	if result := args.Get(0); result != nil {
		return result.(*usecase.LoginResult), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockAuthUsecase) CurrentUser(ctx context.Context, userID uuid.UUID) (*usecase.UserInfo, error) {
	args := m.Called(ctx, userID)
	if info := args.Get(0); info != nil {
		return info.(*usecase.UserInfo), args.Error(1)
	}

	return nil, args.Error(1)
}

// MockApplicationUsecase is a testify mock for usecase.ApplicationUsecase.
type MockApplicationUsecase struct {
	mock.Mock
}

func (m *MockApplicationUsecase) SubmitApplication(ctx context.Context, input usecase.SubmitApplicationInput) (*entity.Application, error) {
	args := m.Called(ctx, input)
	if app := args.Get(0); app != nil {
		return app.(*entity.Application), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockApplicationUsecase) GetApplication(ctx context.Context, principal *entity.Principal, id uuid.UUID) (*entity.Application, error) {
	args := m.Called(ctx, principal, id)
	if app := args.Get(0); app != nil {
		return app.(*entity.Application), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockApplicationUsecase) ListOwnApplications(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error) {
	args := m.Called(ctx, applicantID)
	if apps := args.Get(0); apps != nil {
		return apps.([]*entity.Application), args.Error(1)
	}

	return nil, args.Error(1)
}
