// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"permitdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for the user directory.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a named role is not part of the reference data.
	ErrRoleNotFound = errors.New("role not found")
)

// UserRepository is the user/role directory consumed by the auth core.
// Provisioning keys users on the immutable OIDC subject; role assignments are
// a cache of the identity provider's claims, rebuilt on every login.
type UserRepository interface {
	// FindByOIDCSubject retrieves a user by the provider's subject claim.
	FindByOIDCSubject(ctx context.Context, subject string) (*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastLogin stamps the user's last successful login time.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// FindRolesByUserID returns the roles currently assigned to a user.
	FindRolesByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Role, error)

	// FindRoleByName looks up a role in the reference data by its normalized name.
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)

	// AssignRole grants a role to a user, recording who granted it.
	AssignRole(ctx context.Context, userID, roleID uuid.UUID, grantedBy string) error

	// ClearRoles removes all role assignments for a user. Used together with
	// AssignRole to replace the assignment set during claim sync.
	ClearRoles(ctx context.Context, userID uuid.UUID) error
}
