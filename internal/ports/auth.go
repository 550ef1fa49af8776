package ports

// Package ports defines interfaces (hexagonal ports) for the client core.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"net/url"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
)

// IdentityAPI is the identity boundary of the evaluation service.
// Every call carries the client's credentials.
type IdentityAPI interface {
	// Me returns the current identity. ok is false when the server reports no session.
	Me(ctx context.Context) (id domainauth.Identity, ok bool, err error)
	// LoginEmail authenticates with email and password.
	LoginEmail(ctx context.Context, in EmailLoginInput) (domainauth.Identity, error)
	// Register creates an account and signs it in.
	Register(ctx context.Context, in RegisterInput) (domainauth.Identity, error)
	// ExchangeSession trades a one-shot exchange token for a session.
	ExchangeSession(ctx context.Context, token string) (domainauth.Identity, error)
	// Logout terminates the server-side session.
	Logout(ctx context.Context) error
}

// EmailLoginInput groups parameters for an email/password login.
type EmailLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput groups parameters for an account registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// BeginInput carries inputs for initiating a provider redirect.
// The callback is the only redirect target a provider may embed.
type BeginInput struct {
	Callback string
}

// BeginResult is the outcome of preparing a provider redirect.
type BeginResult struct {
	// AuthURL is the provider URL to navigate to.
	AuthURL string
	// State is an opaque value the provider echoes back; empty when the provider has none.
	State string
}

// IdentityProvider prepares outbound redirects to an identity provider and reads the
// one-shot exchange token from its callback.
type IdentityProvider interface {
	Begin(ctx context.Context, in BeginInput) (BeginResult, error)
	// CallbackToken extracts the exchange token from the callback query, verifying
	// expectedState when the provider uses one.
	CallbackToken(query url.Values, expectedState string) (string, error)
}

// AuthPrompt is the UI collaborator that asks the user to sign in.
type AuthPrompt interface {
	Open(ctx context.Context, reason domainauth.PendingAction)
	Close(ctx context.Context)
}

// Navigator performs navigations: absolute URLs leave the application (full
// discontinuity), relative paths move within it.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}
