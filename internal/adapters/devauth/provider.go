package devauth

// Package devauth provides a local identity provider and identity boundary for development.
// The provider short-circuits the hosted redirect by sending the browser straight back to
// the callback with a locally minted token; Identity accepts that token and any email login.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/ports"
)

// TokenPrefix marks exchange tokens minted by Provider.
const TokenPrefix = "dev-"

const keySession = "dev_session"

// Config controls the dev identity.
type Config struct {
	UserID string
	Email  string
	Name   string
}

// Provider implements ports.IdentityProvider for local development.
type Provider struct{}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev identity provider.
func NewProvider() *Provider { return &Provider{} }

// Begin returns the callback URL itself, carrying a fresh dev token and state.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (ports.BeginResult, error) {
	if in.Callback == "" {
		return ports.BeginResult{}, errors.New("callback URL is required")
	}
	u, err := url.Parse(in.Callback)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("parse callback: %w", err)
	}
	state, err := randomString(24)
	if err != nil {
		return ports.BeginResult{}, fmt.Errorf("generate state: %w", err)
	}
	q := u.Query()
	q.Set("session_id", TokenPrefix+uuid.NewString())
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return ports.BeginResult{AuthURL: u.String(), State: state}, nil
}

// CallbackToken returns the dev token after checking state.
func (p *Provider) CallbackToken(query url.Values, expectedState string) (string, error) {
	if expectedState != "" && query.Get("state") != expectedState {
		return "", errors.New("state mismatch")
	}
	token := query.Get("session_id")
	if !strings.HasPrefix(token, TokenPrefix) {
		return "", errors.New("missing dev session token")
	}
	return token, nil
}

// Identity implements ports.IdentityAPI without a server. The session flag lives in the
// durable store so it survives restarts like a cookie would.
type Identity struct {
	identity domainauth.Identity
	store    ports.DurableStore
}

var _ ports.IdentityAPI = (*Identity)(nil)

// NewIdentity constructs a local identity boundary from Config.
func NewIdentity(cfg Config, store ports.DurableStore) (*Identity, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if store == nil {
		return nil, errors.New("dev auth: store is required")
	}
	return &Identity{
		identity: domainauth.Identity{ID: cfg.UserID, Email: cfg.Email, DisplayName: cfg.Name},
		store:    store,
	}, nil
}

func (d *Identity) Me(ctx context.Context) (domainauth.Identity, bool, error) {
	raw, err := d.store.Get(ctx, keySession)
	if errors.Is(err, ports.ErrNotFound) {
		return domainauth.Identity{}, false, nil
	}
	if err != nil {
		return domainauth.Identity{}, false, err
	}
	var id domainauth.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domainauth.Identity{}, false, fmt.Errorf("decode dev session: %w", err)
	}
	return id, true, nil
}

func (d *Identity) LoginEmail(ctx context.Context, in ports.EmailLoginInput) (domainauth.Identity, error) {
	if in.Email == "" || in.Password == "" {
		return domainauth.Identity{}, errors.New("email and password are required")
	}
	id := d.identity
	id.Email = strings.ToLower(in.Email)
	return id, d.save(ctx, id)
}

func (d *Identity) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	id, err := d.LoginEmail(ctx, ports.EmailLoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		return domainauth.Identity{}, err
	}
	if in.Name != "" {
		id.DisplayName = in.Name
	}
	return id, d.save(ctx, id)
}

func (d *Identity) ExchangeSession(ctx context.Context, token string) (domainauth.Identity, error) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return domainauth.Identity{}, errors.New("invalid dev session token")
	}
	return d.identity, d.save(ctx, d.identity)
}

func (d *Identity) Logout(ctx context.Context) error {
	return d.store.Delete(ctx, keySession)
}

func (d *Identity) save(ctx context.Context, id domainauth.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return d.store.Set(ctx, keySession, raw)
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
