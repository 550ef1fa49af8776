package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/rightname-go/internal/ports"
)

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://example.com/auth",
			TokenEndpoint:         "https://example.com/token",
			UserinfoEndpoint:      "https://example.com/userinfo",
			JwksURI:               "https://example.com/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	issuer = srv.URL
	return srv
}

// createTestProvider creates a test provider with mocked discovery endpoint.
func createTestProvider(t *testing.T) *Provider {
	t.Helper()
	srv := newDiscoveryServer(t)
	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		Scope:        "openid profile email",
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Success(t *testing.T) {
	provider := createTestProvider(t)
	assert.Equal(t, "https://example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://example.com/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, provider.config.Scopes)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{name: "missing client ID", config: ProviderConfig{DiscoveryURL: "http://example.com"}, errMsg: "client ID is required"},
		{name: "missing discovery URL", config: ProviderConfig{ClientID: "client"}, errMsg: "discovery URL is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider := createTestProvider(t)

	res, err := provider.Begin(context.Background(), ports.BeginInput{Callback: "http://127.0.0.1:8765/auth/callback"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.State)

	u, err := url.Parse(res.AuthURL)
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, res.State, q.Get("state"))
	assert.Equal(t, "http://127.0.0.1:8765/auth/callback", q.Get("redirect_uri"))
	assert.NotEmpty(t, q.Get("nonce"))

	// The callback is the only URL-valued parameter.
	for key, vals := range q {
		if key == "redirect_uri" {
			continue
		}
		for _, v := range vals {
			_, perr := url.ParseRequestURI(v)
			assert.Error(t, perr, "unexpected URL in %s", key)
		}
	}
}

func TestProvider_Begin_EmptyCallback(t *testing.T) {
	provider := createTestProvider(t)
	_, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback URL is required")
}

func TestProvider_CallbackToken(t *testing.T) {
	provider := createTestProvider(t)

	tests := []struct {
		name     string
		query    url.Values
		expected string
		want     string
		errMsg   string
	}{
		{name: "ok", query: url.Values{"code": {"c1"}, "state": {"s1"}}, expected: "s1", want: "c1"},
		{name: "state mismatch", query: url.Values{"code": {"c1"}, "state": {"other"}}, expected: "s1", errMsg: "state mismatch"},
		{name: "no login in progress", query: url.Values{"code": {"c1"}, "state": {"s1"}}, errMsg: "no login in progress"},
		{name: "missing code", query: url.Values{"state": {"s1"}}, expected: "s1", errMsg: "authorization code is required"},
		{
			name:   "provider error",
			query:  url.Values{"error": {"access_denied"}, "error_description": {"user said no"}},
			errMsg: "access_denied: user said no",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := provider.CallbackToken(tt.query, tt.expected)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	str1, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, str1, 16)

	str2, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, str2, 32)
	assert.NotEqual(t, str1, str2)
}
