// Package oidc implements the identity-provider integration using OIDC
// discovery, the authorization code flow, and local ID token verification.
package oidc

import (
	"context"
	"log/slog"

	"permitdesk/config"
	domainerrors "permitdesk/internal/domain/errors"
	"permitdesk/internal/domain/service"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// provider implements the service.OIDCService interface on top of go-oidc.
type provider struct {
	oauth       *oauth2.Config
	verifier    *gooidc.IDTokenVerifier
	extraParams map[string]string
	mapper      *claimMapper
	logger      *slog.Logger
}

// NewOIDCService discovers the provider's endpoints from its issuer URL and
// builds the relying-party configuration. Discovery happens once at startup;
// a provider that is down at boot fails the whole application start.
func NewOIDCService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.OIDCService, error) {
	if cfg.OIDC == nil {
		return nil, errors.New("oidc configuration is required")
	}
	if cfg.OIDC.Issuer == "" || cfg.OIDC.ClientID == "" || cfg.OIDC.RedirectURL == "" {
		return nil, errors.New("oidc issuer, clientId and redirectUrl must be provided")
	}

	discovered, err := gooidc.NewProvider(ctx, cfg.OIDC.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "oidc discovery failed")
	}

	scopes := append([]string{gooidc.ScopeOpenID}, cfg.OIDC.Scopes...)

	return &provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			Endpoint:     discovered.Endpoint(),
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scopes:       scopes,
		},
		verifier: discovered.Verifier(&gooidc.Config{
			ClientID: cfg.OIDC.ClientID,
		}),
		extraParams: cfg.OIDC.ExtraAuthParams,
		mapper: &claimMapper{
			fallbackRole:        cfg.OIDC.FallbackRole,
			clientRoleAudiences: cfg.OIDC.ClientRoleAudiences,
			logger:              logger,
		},
		logger: logger,
	}, nil
}

// AuthCodeURL builds the provider authorization URL for the given state and
// nonce. Configured extra parameters ride along verbatim; providers differ in
// which knobs (prompt, acr_values, kc_idp_hint) they need.
func (p *provider) AuthCodeURL(state, nonce string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.extraParams)+1)
	opts = append(opts, gooidc.Nonce(nonce))
	for key, value := range p.extraParams {
		opts = append(opts, oauth2.SetAuthURLParam(key, value))
	}

	return p.oauth.AuthCodeURL(state, opts...)
}

// Exchange redeems the authorization code and extracts verified identity
// claims from the ID token. All claims come from the ID token itself; the
// userinfo endpoint is never consulted.
func (p *provider) Exchange(ctx context.Context, code, nonce string) (*service.IdentityClaims, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, domainerrors.ErrOIDCExchangeFailed.WrapMessage(err.Error())
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, domainerrors.ErrOIDCExchangeFailed.WrapMessage("token response contains no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, domainerrors.ErrOIDCExchangeFailed.WrapMessage(err.Error())
	}
	if idToken.Nonce != nonce {
		return nil, domainerrors.ErrOIDCExchangeFailed.WrapMessage("id token nonce mismatch")
	}

	var raw rawIDClaims
	if err := idToken.Claims(&raw); err != nil {
		return nil, domainerrors.ErrOIDCExchangeFailed.WrapMessage("failed to decode id token claims")
	}

	claims := p.mapper.Map(idToken.Subject, &raw)
	p.logger.Debug("ID token verified",
		slog.String("subject", claims.Subject),
		slog.Int("role_count", len(claims.Roles)),
	)

	return claims, nil
}
