// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// RolePrefix is prepended to every role name derived from identity-provider
// claims, so locally stored names are unambiguous about their origin.
const RolePrefix = "ROLE_"

// Well-known role names. Roles are static reference data; the auth flow only
// reads them, except that claim sync may log a warning for unknown names.
const (
	RoleUser         = "ROLE_USER"
	RoleAdmin        = "ROLE_ADMIN"
	RoleReviewer     = "ROLE_REVIEWER"
	RoleExternalUser = "ROLE_EXTERNAL_USER"
)

// Role is a named authorization tag attached to users.
type Role struct {
	ID          uuid.UUID // The unique identifier for the role.
	Name        string    // Upper-cased, ROLE_-prefixed name, e.g. "ROLE_ADMIN".
	Description string    // Human-readable description of the role.
}

// NormalizeRoleName upper-cases a claim-derived role string and ensures the
// ROLE_ prefix, so "admin" and "ROLE_ADMIN" map to the same local role.
func NormalizeRoleName(name string) string {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}
	if !strings.HasPrefix(normalized, RolePrefix) {
		normalized = RolePrefix + normalized
	}

	return normalized
}

// RoleNames is a slice of role name strings for convenience.
type RoleNames []string

// Contains checks if the slice contains a specific role name.
func (rs RoleNames) Contains(name string) bool {
	return slices.Contains(rs, name)
}

// Dedupe returns the role names with duplicates removed, preserving order.
func (rs RoleNames) Dedupe() RoleNames {
	seen := make(map[string]struct{}, len(rs))
	result := make(RoleNames, 0, len(rs))
	for _, name := range rs {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	return result
}
