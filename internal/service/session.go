package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/ports"
)

// TransitionFunc observes a session state change. It runs on the goroutine that caused
// the change, after the new state is visible.
type TransitionFunc func(ctx context.Context, prev, next domainauth.SessionState)

// CredentialClearer drops locally held credentials such as session cookies.
type CredentialClearer interface {
	ClearCredentials(ctx context.Context) error
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	API   ports.IdentityAPI
	Store ports.DurableStore
	// Credentials is cleared on logout. Optional.
	Credentials CredentialClearer
	Logger      *slog.Logger
}

// SessionService is the single source of truth for who is logged in.
//
// Every state change bumps a generation counter. A resolution records the generation it
// started under and is discarded if another change happened before it returned, so an
// in-flight resolve can never overwrite a later logout or login.
type SessionService struct {
	api         ports.IdentityAPI
	store       ports.DurableStore
	credentials CredentialClearer
	logger      *slog.Logger

	// notifyMu is held from a commit until its subscribers return, so subscribers see
	// transitions in commit order.
	notifyMu sync.Mutex

	mu       sync.Mutex
	state    domainauth.SessionState
	gen      uint64
	subs     map[int]TransitionFunc
	nextSub  int
	resolved chan struct{}

	startOnce sync.Once
}

// NewSessionService constructs a SessionService in the Unresolved state.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		api:         opts.API,
		store:       opts.Store,
		credentials: opts.Credentials,
		logger:      logger,
		state:       domainauth.Unresolved(),
		subs:        make(map[int]TransitionFunc),
		resolved:    make(chan struct{}),
	}
}

// Start runs the startup resolution. Later calls return the current state without
// querying the identity boundary again.
func (s *SessionService) Start(ctx context.Context) domainauth.SessionState {
	s.startOnce.Do(func() { s.Resolve(ctx) })
	return s.State()
}

// State returns the current session state.
func (s *SessionService) State() domainauth.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and returns a function that removes it.
func (s *SessionService) Subscribe(fn TransitionFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// WaitResolved blocks until the state has left Unresolved or ctx ends.
func (s *SessionService) WaitResolved(ctx context.Context) (domainauth.SessionState, error) {
	select {
	case <-s.resolved:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Resolve asks the identity boundary who is logged in. Any failure resolves to
// Anonymous; the error is logged, never returned. A response superseded by a newer
// state change is dropped, as is one whose ctx ended, unless the session is still
// Unresolved.
func (s *SessionService) Resolve(ctx context.Context) domainauth.SessionState {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	next := domainauth.Anonymous()
	id, ok, err := s.api.Me(ctx)
	if ctx.Err() != nil && s.State().Status != domainauth.StatusUnresolved {
		s.logger.DebugContext(ctx, "discarding canceled session resolution", "generation", gen)
		return s.State()
	}
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "session resolution failed; continuing as anonymous", "error", err)
	case ok:
		next = domainauth.Authenticated(id)
	}

	if !s.commit(ctx, gen, next) {
		s.logger.DebugContext(ctx, "discarding superseded session resolution", "generation", gen)
	}
	return s.State()
}

// SetAuthenticated records a fresh login.
func (s *SessionService) SetAuthenticated(ctx context.Context, id domainauth.Identity) {
	s.commit(ctx, s.bump(), domainauth.Authenticated(id))
}

// MarkAnonymous settles an unresolved session as Anonymous. An authenticated session
// is left alone.
func (s *SessionService) MarkAnonymous(ctx context.Context) {
	s.mu.Lock()
	if s.state.IsAuthenticated() {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.commit(ctx, gen, domainauth.Anonymous())
}

// Logout ends the session. Locally the session is Anonymous before the server is
// contacted; the server call is best effort.
func (s *SessionService) Logout(ctx context.Context) {
	s.commit(ctx, s.bump(), domainauth.Anonymous())

	if err := s.store.Delete(ctx, ports.KeyUserAuthenticated); err != nil {
		s.logger.WarnContext(ctx, "clear auth flag failed", "error", err)
	}
	if err := s.api.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "server logout failed; local session cleared anyway", "error", err)
	}
	if s.credentials != nil {
		if err := s.credentials.ClearCredentials(ctx); err != nil {
			s.logger.WarnContext(ctx, "clear credentials failed", "error", err)
		}
	}
}

// WasEverAuthenticated reports the durable flag set by the last successful login.
func (s *SessionService) WasEverAuthenticated(ctx context.Context) bool {
	_, err := s.store.Get(ctx, ports.KeyUserAuthenticated)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.WarnContext(ctx, "read auth flag failed", "error", err)
	}
	return err == nil
}

func (s *SessionService) bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// commit applies next if gen is still current and notifies subscribers of a change.
func (s *SessionService) commit(ctx context.Context, gen uint64, next domainauth.SessionState) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	prev := s.state
	s.state = next
	if prev.Status == domainauth.StatusUnresolved {
		close(s.resolved)
	}
	subs := make([]TransitionFunc, 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	if next.IsAuthenticated() {
		if err := s.store.Set(ctx, ports.KeyUserAuthenticated, []byte("true")); err != nil {
			s.logger.WarnContext(ctx, "persist auth flag failed", "error", err)
		}
	}
	if prev == next {
		return true
	}
	s.logger.InfoContext(ctx, "session state changed", "from", prev.String(), "to", next.String())
	for _, fn := range subs {
		fn(ctx, prev, next)
	}
	return true
}
