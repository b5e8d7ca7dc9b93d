package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath = "."

	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	OIDC *OIDCConfig `json:"oidc" yaml:"oidc"`
}

// AuthConfig holds the session subsystem's contract with its environment:
// signing secret, issuer, token lifetimes and the behavior flags. It is read
// once at startup and treated as immutable for the process lifetime.
type AuthConfig struct {
	// Secret is the HMAC-SHA256 signing key for access tokens.
	Secret string `json:"secret" yaml:"secret"`

	// Issuer is the 'iss' claim stamped on every access token.
	Issuer string `json:"issuer" yaml:"issuer"`

	// AccessTokenTTL is the access-token lifetime (default 15m).
	AccessTokenTTL time.Duration `json:"accessTokenTTL" yaml:"accessTokenTTL"`

	// RefreshTokenTTL is the refresh-token lifetime (default 168h).
	RefreshTokenTTL time.Duration `json:"refreshTokenTTL" yaml:"refreshTokenTTL"`

	// AllowSilentRefresh gates POST /auth/refresh. When false the endpoint
	// always answers 401 with requiresReauth, matching deployments that force
	// a full re-login instead of silent refresh.
	AllowSilentRefresh bool `json:"allowSilentRefresh" yaml:"allowSilentRefresh"`

	// RotateRefreshTokens is a hardening option: when true, each successful
	// refresh issues a new refresh token and revokes the old one.
	RotateRefreshTokens bool `json:"rotateRefreshTokens" yaml:"rotateRefreshTokens"`

	// SecureCookies marks the auth cookies Secure; enable everywhere TLS
	// terminates in front of the service.
	SecureCookies bool `json:"secureCookies" yaml:"secureCookies"`

	// FrontendURL is where the callback redirects after a successful login.
	FrontendURL string `json:"frontendURL" yaml:"frontendURL"`

	// LoginErrorURL is where failed logins redirect, with an error code appended.
	LoginErrorURL string `json:"loginErrorURL" yaml:"loginErrorURL"`

	// LoginURL is the hint included in 401 payloads.
	LoginURL string `json:"loginURL" yaml:"loginURL"`

	// CleanupInterval is how often the background worker purges expired
	// refresh tokens and blacklist entries (default 1h).
	CleanupInterval time.Duration `json:"cleanupInterval" yaml:"cleanupInterval"`
}

// OIDCConfig holds the relying-party settings for the identity provider.
type OIDCConfig struct {
	// Issuer is the provider's issuer URL; endpoints are discovered from
	// {issuer}/.well-known/openid-configuration.
	Issuer string `json:"issuer" yaml:"issuer"`

	ClientID     string `json:"clientId" yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`

	// RedirectURL is this service's callback endpoint as registered with the provider.
	RedirectURL string `json:"redirectUrl" yaml:"redirectUrl"`

	// Scopes requested on top of "openid".
	Scopes []string `json:"scopes" yaml:"scopes"`

	// ExtraAuthParams are provider-specific query parameters (e.g. acr_values,
	// prompt) applied verbatim to the authorization redirect. Some providers
	// require knobs the standard flow does not expose.
	ExtraAuthParams map[string]string `json:"extraAuthParams" yaml:"extraAuthParams"`

	// FallbackRole is assigned when the ID token carries no role claims at
	// all; an authenticated-but-roleless principal is a configuration gap.
	FallbackRole string `json:"fallbackRole" yaml:"fallbackRole"`

	// ClientRoleAudiences limits which clients of the per-client role claim
	// map are honored; empty means all.
	ClientRoleAudiences []string `json:"clientRoleAudiences" yaml:"clientRoleAudiences"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: AUTH_ACCESSTOKENTTL -> auth.accessTokenTTL
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if cfg.Auth == nil {
		return nil, errors.New("auth configuration section is required")
	}
	applyAuthDefaults(cfg.Auth)

	return cfg, nil
}

// applyAuthDefaults fills zero-valued lifetimes so a minimal YAML file still
// yields a working session subsystem.
func applyAuthDefaults(auth *AuthConfig) {
	if auth.AccessTokenTTL <= 0 {
		auth.AccessTokenTTL = defaultAccessTokenTTL
	}
	if auth.RefreshTokenTTL <= 0 {
		auth.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if auth.CleanupInterval <= 0 {
		auth.CleanupInterval = defaultCleanupInterval
	}
	if auth.LoginURL == "" {
		auth.LoginURL = "/auth/login"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
