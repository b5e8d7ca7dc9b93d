package auth

import (
	"testing"
	"time"

	"permitdesk/config"
	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		Secret:          "test_signing_secret_key_very_long_for_testing",
		Issuer:          "permitdesk-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	return cfg
}

func TestJWTService_IssueAndVerifyAccessToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()
	roles := entity.RoleNames{entity.RoleUser, entity.RoleAdmin}

	token, err := svc.IssueAccessToken(userID, "applicant@example.org", roles)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "applicant@example.org", claims.Email)
	assert.Equal(t, roles, claims.Roles)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.Expiry, 5*time.Second)
}

func TestJWTService_JTIFreshPerIssue(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()
	roles := entity.RoleNames{entity.RoleUser}

	first, err := svc.IssueAccessToken(userID, "applicant@example.org", roles)
	require.NoError(t, err)
	second, err := svc.IssueAccessToken(userID, "applicant@example.org", roles)
	require.NoError(t, err)

	firstClaims, err := svc.VerifyAccessToken(first)
	require.NoError(t, err)
	secondClaims, err := svc.VerifyAccessToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.JTI, secondClaims.JTI)
}

func TestJWTService_TamperedTokenRejected(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	token, err := svc.IssueAccessToken(uuid.New(), "applicant@example.org", entity.RoleNames{entity.RoleUser})
	require.NoError(t, err)

	// Flip the last byte of the signature.
	tampered := []byte(token)
	if tampered[len(tampered)-1] == 'A' {
		tampered[len(tampered)-1] = 'B'
	} else {
		tampered[len(tampered)-1] = 'A'
	}

	claims, err := svc.VerifyAccessToken(string(tampered))
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ExpiredTokenRejected(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth.AccessTokenTTL = -time.Second
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	token, err := svc.IssueAccessToken(uuid.New(), "applicant@example.org", entity.RoleNames{entity.RoleUser})
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_NotYetExpiredTokenAccepted(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth.AccessTokenTTL = 2 * time.Second
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	token, err := svc.IssueAccessToken(uuid.New(), "applicant@example.org", entity.RoleNames{entity.RoleUser})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.NoError(t, err)
}

func TestJWTService_MalformedTokenRejected(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_RefreshTokenOpaqueAndHashable(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	first, err := svc.NewRefreshToken()
	require.NoError(t, err)
	second, err := svc.NewRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	// Hashing is deterministic, and distinct tokens hash differently.
	assert.Equal(t, svc.HashToken(first), svc.HashToken(first))
	assert.NotEqual(t, svc.HashToken(first), svc.HashToken(second))
	assert.Len(t, svc.HashToken(first), 64)
}

func TestJWTService_MissingSecret(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth.Secret = ""

	svc, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "signing secret")
}
