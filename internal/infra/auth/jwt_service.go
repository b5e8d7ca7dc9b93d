// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"permitdesk/config"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/entity"
	"permitdesk/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const refreshTokenBytes = 32

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret     []byte        // HMAC key for signing access tokens.
	issuer     string        // 'iss' claim stamped on every access token.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
}

// accessTokenClaims is the wire shape of an access token's payload.
type accessTokenClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Auth == nil || cfg.Auth.Secret == "" {
		return nil, errors.New("jwt signing secret must be provided")
	}
	if cfg.Auth.Issuer == "" {
		return nil, errors.New("token issuer must be provided")
	}

	return &jwtService{
		secret:     []byte(cfg.Auth.Secret),
		issuer:     cfg.Auth.Issuer,
		accessTTL:  cfg.Auth.AccessTokenTTL,
		refreshTTL: cfg.Auth.RefreshTokenTTL,
	}, nil
}

// IssueAccessToken creates a signed access token carrying the user's identity and roles.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, email string, roles entity.RoleNames) (string, error) {
	now := time.Now()
	claims := accessTokenClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

// VerifyAccessToken checks the token's signature, structure and expiry and
// returns the parsed claims. All failure modes map to ErrTokenInvalid so
// callers can treat the request as unauthenticated without inspecting causes.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	var claims accessTokenClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("access token verification failed")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("access token subject is not a user id")
	}
	if claims.ID == "" {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("access token is missing jti")
	}

	parsed := &service.AccessClaims{
		UserID: userID,
		JTI:    claims.ID,
		Email:  claims.Email,
		Roles:  entity.RoleNames(claims.Roles),
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.Expiry = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// NewRefreshToken returns an opaque random credential with 256 bits of entropy.
func (s *jwtService) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest of a raw refresh token. Only this
// digest is ever persisted; a presented candidate is compared by re-hashing.
func (s *jwtService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// AccessTokenTTL returns the configured lifetime for access tokens.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured lifetime for refresh tokens.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}
