// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CallbackInput carries the authorization response from the identity provider.
type CallbackInput struct {
	Code      string
	Nonce     string
	ClientIP  string
	UserAgent string
}

// --- Output DTOs ---

// LoginRedirect is the provider authorization URL plus the values the delivery
// layer must pin in cookies for callback verification.
type LoginRedirect struct {
	URL   string
	State string
	Nonce string
}

// LoginResult returns the provisioned user and their first token pair.
type LoginResult struct {
	User         *entity.User
	Roles        entity.RoleNames
	AccessToken  string
	RefreshToken string
}

// UserInfo is the profile view served to an authenticated client.
type UserInfo struct {
	User  *entity.User
	Roles entity.RoleNames
}

// AuthUsecase defines the interface for the OIDC login flow and user profile access.
type AuthUsecase interface {
	// BeginLogin builds the provider authorization URL with fresh state and nonce.
	BeginLogin(ctx context.Context) (*LoginRedirect, error)

	// HandleCallback exchanges the authorization code, provisions the user from
	// the verified identity claims, and mints the session token pair.
	HandleCallback(ctx context.Context, input CallbackInput) (*LoginResult, error)

	// CurrentUser returns the profile and roles for an authenticated user.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error)
}
