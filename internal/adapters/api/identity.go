// Package api implements the identity and evaluation ports over the gateway client.
package api

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

// Endpoint paths relative to the API root.
const (
	PathMe         = "/auth/me"
	PathLoginEmail = "/auth/login/email"
	PathRegister   = "/auth/register"
	PathSession    = "/auth/session"
	PathLogout     = "/auth/logout"
)

// Identity implements ports.IdentityAPI.
type Identity struct {
	client *gateway.Client
}

// NewIdentity returns an identity client.
func NewIdentity(client *gateway.Client) *Identity {
	return &Identity{client: client}
}

var _ ports.IdentityAPI = (*Identity)(nil)

func (i *Identity) Me(ctx context.Context) (domainauth.Identity, bool, error) {
	var id domainauth.Identity
	err := i.client.JSON(ctx, http.MethodGet, PathMe, nil, &id)
	if gateway.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
		return domainauth.Identity{}, false, nil
	}
	if err != nil {
		return domainauth.Identity{}, false, err
	}
	if id.ID == "" {
		return domainauth.Identity{}, false, &gateway.Error{
			Kind: gateway.KindMalformed, Method: http.MethodGet, Path: PathMe,
			Cause: errors.New("identity without user_id"),
		}
	}
	return id, true, nil
}

func (i *Identity) LoginEmail(ctx context.Context, in ports.EmailLoginInput) (domainauth.Identity, error) {
	return i.identityCall(ctx, PathLoginEmail, in)
}

func (i *Identity) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	return i.identityCall(ctx, PathRegister, in)
}

func (i *Identity) ExchangeSession(ctx context.Context, token string) (domainauth.Identity, error) {
	return i.identityCall(ctx, PathSession, struct {
		SessionID string `json:"session_id"`
	}{SessionID: token})
}

func (i *Identity) Logout(ctx context.Context) error {
	_, err := i.client.Send(ctx, gateway.Request{Method: http.MethodPost, Path: PathLogout})
	return err
}

func (i *Identity) identityCall(ctx context.Context, path string, body any) (domainauth.Identity, error) {
	var id domainauth.Identity
	if err := i.client.JSON(ctx, http.MethodPost, path, body, &id); err != nil {
		return domainauth.Identity{}, err
	}
	if id.ID == "" {
		return domainauth.Identity{}, &gateway.Error{
			Kind: gateway.KindMalformed, Method: http.MethodPost, Path: path,
			Cause: errors.New("identity without user_id"),
		}
	}
	return id, nil
}
