// Package repository provides testify mocks and transaction stand-ins for the
// domain repository interfaces.
package repository

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"
	"permitdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TxManager runs the transaction callback against a fixed factory, standing in
// for a real database transaction in tests.
type TxManager struct {
	Factory repository.RepositoryFactory
}

// Execute implements repository.TransactionManager.
func (m *TxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.Factory)
}

// Factory hands out the repositories it was built with.
type Factory struct {
	User        repository.UserRepository
	Token       repository.TokenRepository
	Application repository.ApplicationRepository
}

// UserRepo implements repository.RepositoryFactory.
func (f *Factory) UserRepo() repository.UserRepository { return f.User }

// TokenRepo implements repository.RepositoryFactory.
func (f *Factory) TokenRepo() repository.TokenRepository { return f.Token }

// ApplicationRepo implements repository.RepositoryFactory.
func (f *Factory) ApplicationRepo() repository.ApplicationRepository { return f.Application }

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByOIDCSubject(ctx context.Context, subject string) (*entity.User, error) {
	args := m.Called(ctx, subject)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)

	return args.Error(0)
}

func (m *MockUserRepository) FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Role, error) {
	args := m.Called(ctx, userID)
	if roles := args.Get(0); roles != nil {
		return roles.([]*entity.Role), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	args := m.Called(ctx, name)
	if role := args.Get(0); role != nil {
		return role.(*entity.Role), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) AssignRole(ctx context.Context, userID, roleID uuid.UUID, grantedBy string) error {
	args := m.Called(ctx, userID, roleID, grantedBy)

	return args.Error(0)
}

func (m *MockUserRepository) ClearRoles(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)

	return args.Error(0)
}

// MockTokenRepository is a testify mock for repository.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *MockTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if token := args.Get(0); token != nil {
		return token.(*entity.RefreshToken), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTokenRepository) MarkRefreshTokenUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)

	return args.Error(0)
}

func (m *MockTokenRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	args := m.Called(ctx, id, at, reason)

	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllRefreshTokensForUser(ctx context.Context, userID uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	args := m.Called(ctx, userID, at, reason)

	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenRepository) BlacklistAccessToken(ctx context.Context, token *entity.RevokedAccessToken) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *MockTokenRepository) IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)

	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) DeleteExpiredBlacklistEntries(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)

	return args.Get(0).(int64), args.Error(1)
}

// MockApplicationRepository is a testify mock for repository.ApplicationRepository.
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	args := m.Called(ctx, app)

	return args.Error(0)
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	args := m.Called(ctx, id)
	if app := args.Get(0); app != nil {
		return app.(*entity.Application), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockApplicationRepository) FindByApplicantID(ctx context.Context, applicantID uuid.UUID) ([]*entity.Application, error) {
	args := m.Called(ctx, applicantID)
	if apps := args.Get(0); apps != nil {
		return apps.([]*entity.Application), args.Error(1)
	}

	return nil, args.Error(1)
}
