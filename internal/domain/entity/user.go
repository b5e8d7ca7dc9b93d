// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the local identity record for a person authenticated through the
// OIDC provider. The provider's subject claim is the immutable external key;
// email and display name are mirrored from the ID token claims on every login.
type User struct {
	ID          uuid.UUID  // The unique identifier for the user.
	OIDCSubject string     // The immutable subject ('sub') claim from the identity provider.
	Email       string     // The user's email, mirrored from the ID token claims.
	Name        string     // Display name, mirrored from the ID token claims.
	Active      bool       // Soft-delete flag; the auth flow never hard-deletes users.
	LastLoginAt *time.Time // Timestamp of the most recent successful login.
	CreatedAt   time.Time  // Timestamp of when this user account was first provisioned.
	UpdatedAt   time.Time  // Timestamp of the last modification to this user's data.
}

// UserRole is the assignment of a Role to a User, with audit fields.
// There is at most one row per (user, role) pair; the whole set is replaced
// from the identity provider's claims on every login.
type UserRole struct {
	UserID    uuid.UUID // The user holding the role.
	RoleID    uuid.UUID // The role being granted.
	GrantedAt time.Time // When the assignment was created.
	GrantedBy string    // Identity of the granter ("oidc-sync" for claim-driven grants).
}
