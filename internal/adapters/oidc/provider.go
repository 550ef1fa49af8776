package oidc

// Package oidc builds OIDC authorization redirects from provider discovery. The
// authorization code returned on the callback is the one-shot exchange token handed to
// the evaluation service, which performs the token exchange server-side.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/target/rightname-go/internal/ports"
)

// Provider implements ports.IdentityProvider using OIDC discovery and OAuth2.
type Provider struct {
	config *oauth2.Config
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates a new OIDC provider, fetching the discovery document once.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := config.Scope
	if strings.TrimSpace(scope) == "" {
		scope = "openid profile email"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID: config.ClientID,
			Scopes:   strings.Fields(scope),
			Endpoint: op.Endpoint(),
		},
	}, nil
}

// Begin builds the authorization URL. The callback is sent as redirect_uri and is the
// only redirect target in the request.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (ports.BeginResult, error) {
	if in.Callback == "" {
		return ports.BeginResult{}, errors.New("callback URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate nonce: %w", err)
	}

	cfg := *p.config
	cfg.RedirectURL = in.Callback
	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	return ports.BeginResult{AuthURL: authURL, State: state}, nil
}

// CallbackToken returns the authorization code after checking state and provider errors.
func (p *Provider) CallbackToken(query url.Values, expectedState string) (string, error) {
	if e := query.Get("error"); e != "" {
		if desc := query.Get("error_description"); desc != "" {
			return "", fmt.Errorf("provider error %s: %s", e, desc)
		}
		return "", fmt.Errorf("provider error %s", e)
	}
	if expectedState == "" {
		return "", errors.New("no login in progress")
	}
	if query.Get("state") != expectedState {
		return "", errors.New("state mismatch")
	}
	code := query.Get("code")
	if code == "" {
		return "", errors.New("authorization code is required")
	}
	return code, nil
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
