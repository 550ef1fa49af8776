package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the identity provider flavour used for redirect logins.
type AuthMode string

const (
	// AuthModeHosted redirects to a hosted identity page that returns a session_id.
	AuthModeHosted AuthMode = "hosted"
	// AuthModeOIDC builds an OIDC authorization request from provider discovery.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock short-circuits the provider (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "hosted", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, oidc, mock)", v)
	}
}

// HostedConfig configures the hosted identity page.
type HostedConfig struct {
	// ProviderURL must not carry a query string; the callback is the only parameter added.
	ProviderURL string `env:"PROVIDER_URL" envDefault:"https://auth.emergentagent.com/"`
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Email  string `env:"EMAIL"   envDefault:"dev@localhost"`
	Name   string `env:"NAME"    envDefault:"Dev User"`
}

// CallbackConfig controls the loopback listener that receives the provider redirect.
type CallbackConfig struct {
	Addr string        `env:"ADDR" envDefault:"127.0.0.1:8765"`
	Path string        `env:"PATH" envDefault:"/auth/callback"`
	Wait time.Duration `env:"WAIT" envDefault:"5m"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider flavour to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	Hosted   HostedConfig   `envPrefix:"AUTH_"`
	OAuth    OAuthConfig    `envPrefix:"OAUTH_"`
	DevAuth  DevAuthConfig  `envPrefix:"DEV_AUTH_"`
	Callback CallbackConfig `envPrefix:"AUTH_CALLBACK_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Hosted.ProviderURL = strings.TrimSpace(a.Hosted.ProviderURL)
	a.Callback.Addr = strings.TrimSpace(a.Callback.Addr)
	if a.Callback.Addr == "" {
		a.Callback.Addr = "127.0.0.1:8765"
	}
	if !strings.HasPrefix(a.Callback.Path, "/") {
		a.Callback.Path = "/" + a.Callback.Path
	}
	if a.Callback.Wait <= 0 {
		a.Callback.Wait = 5 * time.Minute
	}
}

// Validate reports mode-specific settings that are missing.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeHosted:
		if a.Hosted.ProviderURL == "" {
			return errors.New("AUTH_PROVIDER_URL is required for hosted auth")
		}
	case AuthModeOIDC:
		if a.OAuth.ClientID == "" || a.OAuth.DiscoveryURL == "" {
			return errors.New("OAUTH_CLIENT_ID and OAUTH_DISCOVERY_URL are required for oidc auth")
		}
	case AuthModeMock:
	default:
		return fmt.Errorf("unsupported auth mode %q", a.Mode)
	}
	return nil
}

// CallbackURL returns the absolute loopback URL the provider redirects back to.
func (a *AuthConfig) CallbackURL() string {
	return "http://" + a.Callback.Addr + a.Callback.Path
}
