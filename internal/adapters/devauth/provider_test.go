package devauth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	mocks "github.com/target/rightname-go/internal/mocks/auth"
	"github.com/target/rightname-go/internal/ports"
)

func TestProvider_BeginAndCallbackToken(t *testing.T) {
	prov := NewProvider()
	res, err := prov.Begin(context.Background(), ports.BeginInput{Callback: "http://127.0.0.1:8765/auth/callback"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(res.AuthURL, "http://127.0.0.1:8765/auth/callback?") {
		t.Fatalf("unexpected authURL: %s", res.AuthURL)
	}
	if res.State == "" {
		t.Fatal("state should be generated")
	}

	u, err := url.Parse(res.AuthURL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	token, err := prov.CallbackToken(u.Query(), res.State)
	if err != nil {
		t.Fatalf("CallbackToken error: %v", err)
	}
	if !strings.HasPrefix(token, TokenPrefix) {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := prov.CallbackToken(u.Query(), "other"); err == nil {
		t.Fatal("expected state mismatch")
	}
}

func TestIdentity_ExchangeThenMeThenLogout(t *testing.T) {
	store := mocks.NewMemoryStore()
	ctx := context.Background()
	ident, err := NewIdentity(Config{UserID: "dev-user", Email: "dev@localhost", Name: "Dev User"}, store)
	if err != nil {
		t.Fatalf("NewIdentity error: %v", err)
	}

	if _, ok, _ := ident.Me(ctx); ok {
		t.Fatal("expected no session before exchange")
	}
	if _, err := ident.ExchangeSession(ctx, "not-dev"); err == nil {
		t.Fatal("expected foreign token to be rejected")
	}
	id, err := ident.ExchangeSession(ctx, TokenPrefix+"abc")
	if err != nil {
		t.Fatalf("ExchangeSession error: %v", err)
	}
	if id.ID != "dev-user" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	me, ok, err := ident.Me(ctx)
	if err != nil || !ok || me.Email != "dev@localhost" {
		t.Fatalf("Me() = %+v, %v, %v", me, ok, err)
	}

	if err := ident.Logout(ctx); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, ok, _ := ident.Me(ctx); ok {
		t.Fatal("expected no session after logout")
	}
}

func TestIdentity_RegisterUsesName(t *testing.T) {
	ident, err := NewIdentity(Config{UserID: "dev-user"}, mocks.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewIdentity error: %v", err)
	}
	id, err := ident.Register(context.Background(), ports.RegisterInput{Email: "A@B.io", Password: "x", Name: "Ann"})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if id.Email != "a@b.io" || id.DisplayName != "Ann" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestNewIdentity_Validation(t *testing.T) {
	if _, err := NewIdentity(Config{}, mocks.NewMemoryStore()); err == nil {
		t.Fatal("expected UserID error")
	}
	if _, err := NewIdentity(Config{UserID: "u"}, nil); err == nil {
		t.Fatal("expected store error")
	}
}
