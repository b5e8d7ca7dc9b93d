package impl

import (
	"context"
	"testing"
	"time"

	"permitdesk/config"
	"permitdesk/internal/domain/entity"
	"permitdesk/internal/domain/repository"
	"permitdesk/internal/infra/auth"
	mockRepo "permitdesk/internal/mocks/repository"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeTokenStore is an in-memory repository.TokenRepository with the same
// first-write-wins revocation semantics as the postgres implementation. The
// lifecycle tests below run the real token codec against it.
type fakeTokenStore struct {
	sessions  map[string]*entity.RefreshToken
	blacklist map[string]*entity.RevokedAccessToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		sessions:  make(map[string]*entity.RefreshToken),
		blacklist: make(map[string]*entity.RevokedAccessToken),
	}
}

func (s *fakeTokenStore) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	s.sessions[token.TokenHash] = token

	return nil
}

func (s *fakeTokenStore) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	token, ok := s.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return token, nil
}

func (s *fakeTokenStore) MarkRefreshTokenUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, token := range s.sessions {
		if token.ID == id {
			token.LastUsedAt = &at

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (s *fakeTokenStore) RevokeRefreshToken(_ context.Context, id uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	for _, token := range s.sessions {
		if token.ID == id && !token.Revoked {
			token.Revoked = true
			token.RevokedAt = &at
			token.RevokedReason = reason
		}
	}

	return nil
}

func (s *fakeTokenStore) RevokeAllRefreshTokensForUser(_ context.Context, userID uuid.UUID, at time.Time, reason entity.RevocationReason) error {
	for _, token := range s.sessions {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			token.RevokedAt = &at
			token.RevokedReason = reason
		}
	}

	return nil
}

func (s *fakeTokenStore) DeleteExpiredRefreshTokens(_ context.Context, before time.Time) (int64, error) {
	var purged int64
	for hash, token := range s.sessions {
		if token.ExpiresAt.Before(before) {
			delete(s.sessions, hash)
			purged++
		}
	}

	return purged, nil
}

func (s *fakeTokenStore) BlacklistAccessToken(_ context.Context, token *entity.RevokedAccessToken) error {
	if _, ok := s.blacklist[token.JTI]; ok {
		// First revocation wins.
		return nil
	}
	s.blacklist[token.JTI] = token

	return nil
}

func (s *fakeTokenStore) IsAccessTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := s.blacklist[jti]

	return ok, nil
}

func (s *fakeTokenStore) DeleteExpiredBlacklistEntries(_ context.Context, before time.Time) (int64, error) {
	var purged int64
	for jti, entry := range s.blacklist {
		if entry.OriginalExpiry.Before(before) {
			delete(s.blacklist, jti)
			purged++
		}
	}

	return purged, nil
}

func flowConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		Secret:             "lifecycle_test_signing_secret_key",
		Issuer:             "permitdesk-test",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		AllowSilentRefresh: true,
	}

	return cfg
}

func newLifecycleService(t *testing.T, store *fakeTokenStore, userRepo *mockRepo.MockUserRepository) usecase.SessionUsecase {
	t.Helper()

	cfg := flowConfig()
	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	txManager := &mockRepo.TxManager{Factory: &mockRepo.Factory{User: userRepo, Token: store}}

	return NewSessionService(cfg, tokenSvc, txManager, store, testLogger())
}

func TestSessionLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokenStore()

	userID := uuid.New()
	userRepo := new(mockRepo.MockUserRepository)
	userRepo.On("FindByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Email: "admin@example.org", Active: true}, nil)
	userRepo.On("FindRolesByUserID", mock.Anything, userID).
		Return([]*entity.Role{{ID: uuid.New(), Name: entity.RoleAdmin}}, nil)

	svc := newLifecycleService(t, store, userRepo)

	pair, err := svc.GenerateTokenPair(ctx, usecase.GenerateTokenPairInput{
		UserID: userID,
		Email:  "admin@example.org",
		Roles:  entity.RoleNames{entity.RoleAdmin},
	})
	require.NoError(t, err)

	principal, ok := svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.True(t, ok)
	assert.Equal(t, userID, principal.UserID)
	assert.True(t, principal.HasRole(entity.RoleAdmin))

	// Logout-style revocation kills the access token before its natural expiry.
	require.NoError(t, svc.RevokeAccessToken(ctx, pair.AccessToken, entity.RevocationReasonLogout))
	_, ok = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.False(t, ok)

	// The refresh token survives and mints a new, independently valid access
	// token carrying the same roles.
	out, err := svc.RefreshAccessToken(ctx, usecase.RefreshInput{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, out.AccessToken)
	assert.Equal(t, pair.RefreshToken, out.RefreshToken)

	principal, ok = svc.ValidateAccessToken(ctx, out.AccessToken)
	require.True(t, ok)
	assert.True(t, principal.HasRole(entity.RoleAdmin))
}

func TestSessionLifecycle_DoubleRevocationFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokenStore()
	userID := uuid.New()
	userRepo := new(mockRepo.MockUserRepository)

	svc := newLifecycleService(t, store, userRepo)

	pair, err := svc.GenerateTokenPair(ctx, usecase.GenerateTokenPairInput{
		UserID: userID,
		Email:  "user@example.org",
		Roles:  entity.RoleNames{entity.RoleUser},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefreshToken(ctx, pair.RefreshToken, entity.RevocationReasonLogout))

	var row *entity.RefreshToken
	for _, session := range store.sessions {
		row = session
	}
	require.NotNil(t, row)
	require.True(t, row.Revoked)
	firstRevokedAt := *row.RevokedAt

	// The second revocation is a no-op: no error, and neither the timestamp
	// nor the recorded reason changes.
	require.NoError(t, svc.RevokeRefreshToken(ctx, pair.RefreshToken, entity.RevocationReasonSecurityBreach))
	assert.True(t, row.Revoked)
	assert.Equal(t, firstRevokedAt, *row.RevokedAt)
	assert.Equal(t, entity.RevocationReasonLogout, row.RevokedReason)
}

func TestSessionLifecycle_CleanupPurgesOnlyExpiredRows(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokenStore()
	now := time.Now()
	userID := uuid.New()

	require.NoError(t, store.CreateRefreshToken(ctx, &entity.RefreshToken{
		UserID: userID, TokenHash: "stale-hash", ExpiresAt: now.Add(-time.Second),
	}))
	require.NoError(t, store.CreateRefreshToken(ctx, &entity.RefreshToken{
		UserID: userID, TokenHash: "live-hash", ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, store.BlacklistAccessToken(ctx, &entity.RevokedAccessToken{
		JTI: "stale-jti", UserID: userID, OriginalExpiry: now.Add(-time.Second),
	}))
	require.NoError(t, store.BlacklistAccessToken(ctx, &entity.RevokedAccessToken{
		JTI: "live-jti", UserID: userID, OriginalExpiry: now.Add(time.Hour),
	}))

	svc := newLifecycleService(t, store, new(mockRepo.MockUserRepository))

	result, err := svc.CleanupExpiredTokens(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RefreshTokensPurged)
	assert.Equal(t, int64(1), result.BlacklistEntriesPurged)

	_, err = store.FindRefreshTokenByHash(ctx, "stale-hash")
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)
	_, err = store.FindRefreshTokenByHash(ctx, "live-hash")
	assert.NoError(t, err)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "live-jti")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}
