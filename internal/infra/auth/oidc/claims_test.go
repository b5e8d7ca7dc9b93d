package oidc

import (
	"log/slog"
	"testing"

	"permitdesk/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func newTestMapper(fallback string, audiences []string) *claimMapper {
	return &claimMapper{
		fallbackRole:        fallback,
		clientRoleAudiences: audiences,
		logger:              slog.Default(),
	}
}

func TestClaimMapper_RealmRolesNormalized(t *testing.T) {
	mapper := newTestMapper("", nil)

	claims := mapper.Map("subject-1", &rawIDClaims{
		Email:       "applicant@example.org",
		RealmAccess: roleHolder{Roles: []string{"admin", "reviewer"}},
	})

	assert.Equal(t, "subject-1", claims.Subject)
	assert.ElementsMatch(t, []string{"ROLE_ADMIN", "ROLE_REVIEWER"}, claims.Roles)
}

func TestClaimMapper_AlreadyPrefixedRolesNotDoubled(t *testing.T) {
	mapper := newTestMapper("", nil)

	claims := mapper.Map("subject-1", &rawIDClaims{
		RealmAccess: roleHolder{Roles: []string{"ROLE_ADMIN", "admin"}},
	})

	assert.Equal(t, []string{"ROLE_ADMIN"}, claims.Roles)
}

func TestClaimMapper_ClientRolesMerged(t *testing.T) {
	mapper := newTestMapper("", nil)

	claims := mapper.Map("subject-1", &rawIDClaims{
		RealmAccess: roleHolder{Roles: []string{"user"}},
		ResourceAccess: map[string]roleHolder{
			"permitdesk-web": {Roles: []string{"reviewer"}},
		},
	})

	assert.ElementsMatch(t, []string{"ROLE_USER", "ROLE_REVIEWER"}, claims.Roles)
}

func TestClaimMapper_ClientRolesFilteredByAudience(t *testing.T) {
	mapper := newTestMapper("", []string{"permitdesk-web"})

	claims := mapper.Map("subject-1", &rawIDClaims{
		ResourceAccess: map[string]roleHolder{
			"permitdesk-web": {Roles: []string{"reviewer"}},
			"account":        {Roles: []string{"manage-account"}},
		},
	})

	assert.Equal(t, []string{"ROLE_REVIEWER"}, claims.Roles)
}

func TestClaimMapper_FallbackRoleWhenNoClaims(t *testing.T) {
	mapper := newTestMapper("", nil)

	claims := mapper.Map("subject-1", &rawIDClaims{})

	assert.Equal(t, []string{entity.RoleExternalUser}, claims.Roles)
}

func TestClaimMapper_ConfiguredFallbackRole(t *testing.T) {
	mapper := newTestMapper("guest", nil)

	claims := mapper.Map("subject-1", &rawIDClaims{
		RealmAccess: roleHolder{Roles: []string{"  ", ""}},
	})

	assert.Equal(t, []string{"ROLE_GUEST"}, claims.Roles)
}

func TestIdentityClaims_DisplayNameFallbacks(t *testing.T) {
	mapper := newTestMapper("", nil)

	withName := mapper.Map("s", &rawIDClaims{Name: "Casey Doe", PreferredUsername: "cdoe", Email: "c@example.org"})
	assert.Equal(t, "Casey Doe", withName.DisplayName())

	withUsername := mapper.Map("s", &rawIDClaims{PreferredUsername: "cdoe", Email: "c@example.org"})
	assert.Equal(t, "cdoe", withUsername.DisplayName())

	emailOnly := mapper.Map("s", &rawIDClaims{Email: "c@example.org"})
	assert.Equal(t, "c@example.org", emailOnly.DisplayName())
}
