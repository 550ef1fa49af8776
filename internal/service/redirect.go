package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	apperrors "github.com/target/rightname-go/internal/errors"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

// DefaultExchangeTTL is how long a consumed exchange token is remembered.
const DefaultExchangeTTL = 24 * time.Hour

// ExchangeOutcome describes how a callback was handled.
type ExchangeOutcome string

const (
	// ExchangeAuthenticated means the token was traded for a session.
	ExchangeAuthenticated ExchangeOutcome = "authenticated"
	// ExchangeReplayed means the token was already consumed; nothing was sent.
	ExchangeReplayed ExchangeOutcome = "replayed"
)

// RedirectBridgeOptions groups dependencies for RedirectBridge.
type RedirectBridgeOptions struct {
	Provider  ports.IdentityProvider
	API       ports.IdentityAPI
	Session   *SessionService
	Store     ports.DurableStore
	Navigator ports.Navigator
	// Callback is the absolute URL the provider redirects back to.
	Callback    string
	ExchangeTTL time.Duration
	Logger      *slog.Logger
}

// RedirectBridge sends the user to the identity provider and resumes the callback.
type RedirectBridge struct {
	provider    ports.IdentityProvider
	api         ports.IdentityAPI
	session     *SessionService
	store       ports.DurableStore
	navigator   ports.Navigator
	callback    string
	exchangeTTL time.Duration
	logger      *slog.Logger
}

// NewRedirectBridge constructs a RedirectBridge.
func NewRedirectBridge(opts RedirectBridgeOptions) *RedirectBridge {
	b := &RedirectBridge{
		provider:    opts.Provider,
		api:         opts.API,
		session:     opts.Session,
		store:       opts.Store,
		navigator:   opts.Navigator,
		callback:    opts.Callback,
		exchangeTTL: opts.ExchangeTTL,
		logger:      opts.Logger,
	}
	if b.exchangeTTL <= 0 {
		b.exchangeTTL = DefaultExchangeTTL
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// BeginLoginResult contains the provider URL the user was sent to.
type BeginLoginResult struct {
	AuthURL string
	// ReturnPath is the path stored for the return trip, empty when none was kept.
	ReturnPath string
}

// BeginLogin stores the return path and login state, then navigates to the provider.
// currentPath is where the user is now; auth pages and non-relative targets are never
// stored as return paths.
func (b *RedirectBridge) BeginLogin(ctx context.Context, currentPath string) (*BeginLoginResult, error) {
	if b.callback == "" {
		return nil, errors.New("callback URL is required")
	}

	begin, err := b.provider.Begin(ctx, ports.BeginInput{Callback: b.callback})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	result := &BeginLoginResult{AuthURL: begin.AuthURL}
	if ReturnPathAllowed(currentPath) {
		if err := b.store.Set(ctx, ports.KeyReturnPath, []byte(currentPath)); err != nil {
			return nil, fmt.Errorf("save return path: %w", err)
		}
		result.ReturnPath = currentPath
	} else if err := b.store.Delete(ctx, ports.KeyReturnPath); err != nil {
		return nil, fmt.Errorf("clear return path: %w", err)
	}

	if begin.State != "" {
		err = b.store.Set(ctx, ports.KeyLoginState, []byte(begin.State))
	} else {
		err = b.store.Delete(ctx, ports.KeyLoginState)
	}
	if err != nil {
		return nil, fmt.Errorf("save login state: %w", err)
	}

	if err := b.navigator.Navigate(ctx, begin.AuthURL); err != nil {
		return nil, fmt.Errorf("navigate to identity provider: %w", err)
	}
	return result, nil
}

// CompleteLoginResult reports how a callback was handled.
type CompleteLoginResult struct {
	Outcome  ExchangeOutcome
	Identity domainauth.Identity
	// ReturnPath is the stored path that was navigated to, if any.
	ReturnPath string
}

// CompleteLogin trades the exchange token carried by query for a session.
//
// A token is exchanged at most once: the first caller claims it in a durable ledger and
// later callers get ExchangeReplayed with a nil error. Failures leave the session
// Anonymous and return a recoverable exchange_failed error. The stored return path is
// navigated to once and cleared whatever the outcome.
func (b *RedirectBridge) CompleteLogin(ctx context.Context, query url.Values) (*CompleteLoginResult, error) {
	result := &CompleteLoginResult{}
	defer func() { result.ReturnPath = b.resumeReturnPath(ctx) }()

	expectedState, err := b.readState(ctx)
	if err != nil {
		return result, err
	}

	token, err := b.provider.CallbackToken(query, expectedState)
	if err != nil {
		b.session.MarkAnonymous(ctx)
		return result, exchangeFailed(err)
	}

	claimed, err := b.store.SetIfAbsent(ctx, ledgerKey(token), []byte(time.Now().UTC().Format(time.RFC3339)), b.exchangeTTL)
	if err != nil {
		return result, fmt.Errorf("record exchange token: %w", err)
	}
	if !claimed {
		b.logger.InfoContext(ctx, "ignoring replayed exchange token")
		result.Outcome = ExchangeReplayed
		return result, nil
	}

	id, err := b.api.ExchangeSession(ctx, token)
	if err != nil {
		b.session.MarkAnonymous(ctx)
		return result, exchangeFailed(err)
	}
	if err := b.store.Delete(ctx, ports.KeyLoginState); err != nil {
		b.logger.WarnContext(ctx, "clear login state failed", "error", err)
	}

	b.session.SetAuthenticated(ctx, id)
	result.Outcome = ExchangeAuthenticated
	result.Identity = id
	return result, nil
}

func (b *RedirectBridge) readState(ctx context.Context) (string, error) {
	raw, err := b.store.Get(ctx, ports.KeyLoginState)
	if errors.Is(err, ports.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read login state: %w", err)
	}
	return string(raw), nil
}

// resumeReturnPath takes the stored path and navigates there once. A missing or
// unreadable path means no navigation.
func (b *RedirectBridge) resumeReturnPath(ctx context.Context) string {
	raw, err := b.store.Take(ctx, ports.KeyReturnPath)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			b.logger.WarnContext(ctx, "read return path failed", "error", err)
		}
		return ""
	}
	path := string(raw)
	if !ReturnPathAllowed(path) {
		b.logger.WarnContext(ctx, "dropping unsafe return path", "path", path)
		return ""
	}
	if err := b.navigator.Navigate(ctx, path); err != nil {
		b.logger.WarnContext(ctx, "navigate to return path failed", "path", path, "error", err)
	}
	return path
}

// ReturnPathAllowed reports whether path may be stored as a post-login destination:
// a same-origin relative path that is neither the root nor an auth page.
func ReturnPathAllowed(path string) bool {
	if path == "" || path == "/" || strings.HasPrefix(path, "//") {
		return false
	}
	u, err := url.Parse(path)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return false
	}
	p := strings.TrimRight(u.Path, "/")
	return p != "" && p != "/auth" && !strings.HasPrefix(p, "/auth/")
}

func ledgerKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return ports.KeyExchangePrefix + hex.EncodeToString(sum[:])
}

func exchangeFailed(err error) error {
	msg := "Sign-in could not be completed. Please try signing in again."
	if reason := gateway.ReasonOf(err); reason != "" {
		msg = reason + ". Please try signing in again."
	}
	return apperrors.Wrap(err, apperrors.ErrCodeExchangeFailed, msg)
}
