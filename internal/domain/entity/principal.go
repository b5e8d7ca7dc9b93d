// Package entity contains the core business objects of the project.
package entity

import "github.com/google/uuid"

// Principal is the authenticated identity attached to a request after the
// access token has been validated. It carries only what request handling
// needs; the full User record stays in the directory.
type Principal struct {
	UserID uuid.UUID // Local user id (the access token's subject).
	Email  string    // Email claim carried in the access token.
	Roles  RoleNames // Role names carried in the access token.
}

// HasRole checks whether the principal carries the given role name.
func (p *Principal) HasRole(name string) bool {
	return p.Roles.Contains(name)
}
