package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	apperrors "github.com/target/rightname-go/internal/errors"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

// ActionHandler executes an auth-gated action.
type ActionHandler interface {
	Handle(ctx context.Context, action domainauth.PendingAction) error
}

// ActionHandlerFunc adapts a function to ActionHandler.
type ActionHandlerFunc func(ctx context.Context, action domainauth.PendingAction) error

// Handle calls f.
func (f ActionHandlerFunc) Handle(ctx context.Context, action domainauth.PendingAction) error {
	return f(ctx, action)
}

// RequireOutcome is what RequireAuth did with an action.
type RequireOutcome string

const (
	// OutcomeExecuted means the action ran immediately.
	OutcomeExecuted RequireOutcome = "executed"
	// OutcomeDeferred means the action was remembered and the auth prompt opened.
	OutcomeDeferred RequireOutcome = "deferred"
	// OutcomeQueued means the session was still unresolved; the action was remembered
	// and is settled once resolution completes.
	OutcomeQueued RequireOutcome = "queued"
)

// AuthOrchestratorOptions groups dependencies for AuthOrchestrator.
type AuthOrchestratorOptions struct {
	Session *SessionService
	Pending *PendingActions
	Bridge  *RedirectBridge
	API     ports.IdentityAPI
	Prompt  ports.AuthPrompt
	Handler ActionHandler
	Logger  *slog.Logger
}

// AuthOrchestrator is the public auth surface: who is logged in, log in, log out and
// resume what the user was doing.
//
// The pending action is checked on every transition into Authenticated, whatever caused
// it (startup resolution, redirect callback, inline email login). Consumption is atomic,
// so the action runs at most once even when several paths race to resume it.
type AuthOrchestrator struct {
	session *SessionService
	pending *PendingActions
	bridge  *RedirectBridge
	api     ports.IdentityAPI
	prompt  ports.AuthPrompt
	handler ActionHandler
	logger  *slog.Logger

	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewAuthOrchestrator wires the orchestrator to session transitions. Call Close on
// teardown.
func NewAuthOrchestrator(opts AuthOrchestratorOptions) *AuthOrchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &AuthOrchestrator{
		session: opts.Session,
		pending: opts.Pending,
		bridge:  opts.Bridge,
		api:     opts.API,
		prompt:  opts.Prompt,
		handler: opts.Handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	o.unsubscribe = o.session.Subscribe(o.onTransition)
	return o
}

// Close stops waiting on unresolved sessions and detaches from the session service.
func (o *AuthOrchestrator) Close() {
	o.closeOnce.Do(func() {
		o.cancel()
		o.unsubscribe()
		o.wg.Wait()
	})
}

// State returns the current session state.
func (o *AuthOrchestrator) State() domainauth.SessionState { return o.session.State() }

// RequireAuth runs action if the user is authenticated. Otherwise the action is
// remembered durably: an anonymous user is shown the auth prompt, and an unresolved
// session is settled once resolution completes.
func (o *AuthOrchestrator) RequireAuth(ctx context.Context, action domainauth.PendingAction) (RequireOutcome, error) {
	if !action.Valid() {
		return "", apperrors.ValidationField("kind", fmt.Sprintf("invalid action %q", action.Kind))
	}

	state := o.session.State()
	switch state.Status {
	case domainauth.StatusAuthenticated:
		return OutcomeExecuted, o.handler.Handle(ctx, action)

	case domainauth.StatusAnonymous:
		if err := o.pending.Remember(ctx, action); err != nil {
			return "", err
		}
		o.prompt.Open(ctx, action)
		return OutcomeDeferred, nil

	default:
		if err := o.pending.Remember(ctx, action); err != nil {
			return "", err
		}
		if o.ctx.Err() == nil {
			o.wg.Add(1)
			go o.awaitResolution(action)
		}
		return OutcomeQueued, nil
	}
}

// awaitResolution settles an action queued while the session was unresolved.
func (o *AuthOrchestrator) awaitResolution(action domainauth.PendingAction) {
	defer o.wg.Done()

	state, err := o.session.WaitResolved(o.ctx)
	if err != nil {
		return
	}
	if state.IsAuthenticated() {
		// The transition may have fired before the action was remembered.
		o.resume(o.ctx)
		return
	}
	if _, ok, err := o.pending.Peek(o.ctx); err == nil && ok {
		o.prompt.Open(o.ctx, action)
	}
}

func (o *AuthOrchestrator) onTransition(ctx context.Context, prev, next domainauth.SessionState) {
	if !next.IsAuthenticated() || prev.IsAuthenticated() {
		return
	}
	o.resume(ctx)
}

// resume consumes and runs the pending action, then closes the prompt.
func (o *AuthOrchestrator) resume(ctx context.Context) bool {
	defer o.prompt.Close(ctx)

	action, ok, err := o.pending.ConsumeIfPresent(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "consume pending action failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	o.logger.InfoContext(ctx, "resuming pending action", "kind", action.Kind, "report_id", action.ReportID)
	if err := o.handler.Handle(ctx, action); err != nil {
		o.logger.WarnContext(ctx, "pending action failed", "kind", action.Kind, "error", err)
	}
	return true
}

// Resume runs the remembered action for an authenticated user. It reports whether an
// action was run.
func (o *AuthOrchestrator) Resume(ctx context.Context) (bool, error) {
	if !o.session.State().IsAuthenticated() {
		return false, apperrors.Unauthenticated("Sign in to continue.")
	}
	return o.resume(ctx), nil
}

// Pending returns the remembered action, if any.
func (o *AuthOrchestrator) Pending(ctx context.Context) (domainauth.PendingAction, bool, error) {
	return o.pending.Peek(ctx)
}

// CancelPrompt closes the auth prompt and drops the remembered action.
func (o *AuthOrchestrator) CancelPrompt(ctx context.Context) error {
	o.prompt.Close(ctx)
	return o.pending.Cancel(ctx)
}

// LoginEmail signs in with email and password without leaving the CLI.
func (o *AuthOrchestrator) LoginEmail(ctx context.Context, email, password string) (domainauth.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domainauth.Identity{}, apperrors.Validation("Email and password are required.")
	}
	id, err := o.api.LoginEmail(ctx, ports.EmailLoginInput{Email: email, Password: password})
	if err != nil {
		return domainauth.Identity{}, rejected(err, apperrors.ErrCodeLoginFailed, "Login failed")
	}
	o.session.SetAuthenticated(ctx, id)
	return id, nil
}

// Register creates an account and signs in.
func (o *AuthOrchestrator) Register(ctx context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return domainauth.Identity{}, apperrors.Validation("Name, email and password are required.")
	}
	id, err := o.api.Register(ctx, in)
	if err != nil {
		return domainauth.Identity{}, rejected(err, apperrors.ErrCodeRegistrationFailed, "Registration failed")
	}
	o.session.SetAuthenticated(ctx, id)
	return id, nil
}

// BeginLogin starts the redirect flow from currentPath.
func (o *AuthOrchestrator) BeginLogin(ctx context.Context, currentPath string) (*BeginLoginResult, error) {
	return o.bridge.BeginLogin(ctx, currentPath)
}

// CompleteLogin finishes the redirect flow from the callback query.
func (o *AuthOrchestrator) CompleteLogin(ctx context.Context, query url.Values) (*CompleteLoginResult, error) {
	return o.bridge.CompleteLogin(ctx, query)
}

// Logout ends the session. It always succeeds locally.
func (o *AuthOrchestrator) Logout(ctx context.Context) {
	o.session.Logout(ctx)
}

// rejected wraps a login or registration failure, surfacing the server's reason.
func rejected(err error, code apperrors.ErrorCode, fallback string) error {
	msg := fallback
	if reason := gateway.ReasonOf(err); reason != "" {
		msg = reason
	}
	return apperrors.Wrap(err, code, msg)
}
