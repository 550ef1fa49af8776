package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/rightname-go/config"
	"github.com/target/rightname-go/internal/adapters/api"
	"github.com/target/rightname-go/internal/adapters/devauth"
	"github.com/target/rightname-go/internal/adapters/hosted"
	"github.com/target/rightname-go/internal/adapters/oidc"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

// AuthConfig contains configuration for the identity collaborators.
type AuthConfig struct {
	Auth    config.AuthConfig
	Gateway *gateway.Client
	Store   ports.DurableStore
	Logger  *slog.Logger
}

// AuthComponents pairs the identity boundary with the redirect provider for one mode.
type AuthComponents struct {
	API      ports.IdentityAPI
	Provider ports.IdentityProvider
}

// BuildAuth selects the identity boundary and provider for the configured auth mode.
// Mock mode never contacts the server for identity calls.
func BuildAuth(ctx context.Context, cfg AuthConfig) (AuthComponents, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuth(cfg)
	case config.AuthModeOIDC:
		return buildOIDCAuth(ctx, cfg)
	case config.AuthModeHosted, "":
		return buildHostedAuth(cfg)
	default:
		return AuthComponents{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevAuth(cfg AuthConfig) (AuthComponents, error) {
	identity, err := devauth.NewIdentity(devauth.Config{
		UserID: cfg.Auth.DevAuth.UserID,
		Email:  cfg.Auth.DevAuth.Email,
		Name:   cfg.Auth.DevAuth.Name,
	}, cfg.Store)
	if err != nil {
		return AuthComponents{}, fmt.Errorf("build dev auth: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("dev auth enabled; identity calls are answered locally", "user_id", cfg.Auth.DevAuth.UserID)
	}
	return AuthComponents{API: identity, Provider: devauth.NewProvider()}, nil
}

func buildOIDCAuth(ctx context.Context, cfg AuthConfig) (AuthComponents, error) {
	if cfg.Gateway == nil {
		return AuthComponents{}, errors.New("oidc auth requires an api client")
	}
	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     cfg.Auth.OAuth.ClientID,
		Scope:        cfg.Auth.OAuth.Scope,
		DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
	})
	if err != nil {
		return AuthComponents{}, fmt.Errorf("build oidc provider: %w", err)
	}
	return AuthComponents{API: api.NewIdentity(cfg.Gateway), Provider: prov}, nil
}

func buildHostedAuth(cfg AuthConfig) (AuthComponents, error) {
	if cfg.Gateway == nil {
		return AuthComponents{}, errors.New("hosted auth requires an api client")
	}
	prov, err := hosted.NewProvider(cfg.Auth.Hosted.ProviderURL)
	if err != nil {
		return AuthComponents{}, fmt.Errorf("build hosted provider: %w", err)
	}
	return AuthComponents{API: api.NewIdentity(cfg.Gateway), Provider: prov}, nil
}
