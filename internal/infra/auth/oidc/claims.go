package oidc

import (
	"log/slog"
	"slices"

	"permitdesk/internal/domain/entity"
	"permitdesk/internal/domain/service"
)

// rawIDClaims is the wire shape of the ID token claims this service reads.
// The role claim layout follows the Keycloak convention: realm-wide roles
// under realm_access and per-client roles under resource_access.
type rawIDClaims struct {
	Email             string                `json:"email"`
	Name              string                `json:"name"`
	PreferredUsername string                `json:"preferred_username"`
	RealmAccess       roleHolder            `json:"realm_access"`
	ResourceAccess    map[string]roleHolder `json:"resource_access"`
}

type roleHolder struct {
	Roles []string `json:"roles"`
}

// claimMapper turns raw ID token claims into the identity the directory
// provisions from.
type claimMapper struct {
	fallbackRole        string
	clientRoleAudiences []string
	logger              *slog.Logger
}

// Map builds IdentityClaims from a verified token's subject and raw claims.
// Role names from both claim shapes are normalized (upper case, ROLE_ prefix)
// and deduplicated; an empty result falls back to the configured default role
// so no authenticated principal ends up roleless.
func (m *claimMapper) Map(subject string, raw *rawIDClaims) *service.IdentityClaims {
	roles := make(entity.RoleNames, 0, len(raw.RealmAccess.Roles))
	for _, name := range raw.RealmAccess.Roles {
		if normalized := entity.NormalizeRoleName(name); normalized != "" {
			roles = append(roles, normalized)
		}
	}

	for client, holder := range raw.ResourceAccess {
		if len(m.clientRoleAudiences) > 0 && !slices.Contains(m.clientRoleAudiences, client) {
			continue
		}
		for _, name := range holder.Roles {
			if normalized := entity.NormalizeRoleName(name); normalized != "" {
				roles = append(roles, normalized)
			}
		}
	}

	roles = roles.Dedupe()
	if len(roles) == 0 {
		fallback := entity.NormalizeRoleName(m.fallbackRole)
		if fallback == "" {
			fallback = entity.RoleExternalUser
		}
		m.logger.Warn("ID token carried no role claims, assigning fallback role",
			slog.String("subject", subject),
			slog.String("role", fallback),
		)
		roles = entity.RoleNames{fallback}
	}

	return &service.IdentityClaims{
		Subject:           subject,
		Email:             raw.Email,
		Name:              raw.Name,
		PreferredUsername: raw.PreferredUsername,
		Roles:             roles,
	}
}
