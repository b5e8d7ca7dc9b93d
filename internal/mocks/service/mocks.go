// Package service provides testify mocks for the domain service contracts.
package service

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"
	"permitdesk/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTokenService is a testify mock for service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueAccessToken(userID uuid.UUID, email string, roles entity.RoleNames) (string, error) {
	args := m.Called(userID, email, roles)

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) VerifyAccessToken(token string) (*service.AccessClaims, error) {
	args := m.Called(token)
	if claims := args.Get(0); claims != nil {
		return claims.(*service.AccessClaims), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockTokenService) NewRefreshToken() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) HashToken(raw string) string {
	args := m.Called(raw)

	return args.String(0)
}

func (m *MockTokenService) AccessTokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

func (m *MockTokenService) RefreshTokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

// MockOIDCService is a testify mock for service.OIDCService.
type MockOIDCService struct {
	mock.Mock
}

func (m *MockOIDCService) AuthCodeURL(state, nonce string) string {
	args := m.Called(state, nonce)

	return args.String(0)
}

func (m *MockOIDCService) Exchange(ctx context.Context, code, nonce string) (*service.IdentityClaims, error) {
	args := m.Called(ctx, code, nonce)
	if claims := args.Get(0); claims != nil {
		return claims.(*service.IdentityClaims), args.Error(1)
	}

	return nil, args.Error(1)
}
