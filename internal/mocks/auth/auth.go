package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.IdentityAPI      = (*FakeIdentityAPI)(nil)
	_ ports.DurableStore     = (*MemoryStore)(nil)
	_ ports.Navigator        = (*RecordingNavigator)(nil)
	_ ports.AuthPrompt       = (*RecordingPrompt)(nil)
)

// MockIdentityProvider simulates an IdP for tests with deterministic state handling.
type MockIdentityProvider struct {
	BeginFunc func(ctx context.Context, in ports.BeginInput) (ports.BeginResult, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	// TokenParam is the callback query parameter carrying the exchange token.
	TokenParam string

	mu        sync.Mutex
	callCount int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		TokenParam:  "session_id",
	}
}

func (m *MockIdentityProvider) Begin(ctx context.Context, in ports.BeginInput) (ports.BeginResult, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	prefix := m.StatePrefix
	if prefix == "" {
		prefix = "state"
	}

	q := url.Values{"redirect": {in.Callback}}
	return ports.BeginResult{
		AuthURL: authURL + "?" + q.Encode(),
		State:   fmt.Sprintf("%s-%d", prefix, n),
	}, nil
}

func (m *MockIdentityProvider) CallbackToken(query url.Values, expectedState string) (string, error) {
	if expectedState != "" && query.Get("state") != expectedState {
		return "", errors.New("state mismatch")
	}
	param := m.TokenParam
	if param == "" {
		param = "session_id"
	}
	token := query.Get(param)
	if token == "" {
		return "", errors.New("missing exchange token")
	}
	return token, nil
}

// Calls returns how many times Begin ran with the default behaviour.
func (m *MockIdentityProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// FakeIdentityAPI is a scriptable identity boundary that records every call.
type FakeIdentityAPI struct {
	mu sync.Mutex

	// Current is the identity Me reports; nil means no session.
	Current *domainauth.Identity
	// Users maps email to password and identity for LoginEmail.
	Users map[string]FakeUser
	// Tokens maps exchange tokens to identities. Each token works once.
	Tokens map[string]domainauth.Identity

	MeErr     error
	LogoutErr error

	// MeGate, when set, blocks Me until a value is received or ctx ends.
	MeGate chan struct{}

	MeCalls       int
	ExchangeCalls int
	LogoutCalls   int
}

// FakeUser is a registered account of FakeIdentityAPI.
type FakeUser struct {
	Password string
	Identity domainauth.Identity
}

// NewFakeIdentityAPI returns an API with no session and no accounts.
func NewFakeIdentityAPI() *FakeIdentityAPI {
	return &FakeIdentityAPI{
		Users:  make(map[string]FakeUser),
		Tokens: make(map[string]domainauth.Identity),
	}
}

// AddUser registers an account usable with LoginEmail.
func (f *FakeIdentityAPI) AddUser(password string, id domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Users[id.Email] = FakeUser{Password: password, Identity: id}
}

// AddToken registers a one-shot exchange token.
func (f *FakeIdentityAPI) AddToken(token string, id domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens[token] = id
}

// SetCurrent replaces the identity Me reports.
func (f *FakeIdentityAPI) SetCurrent(id *domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Current = id
}

func (f *FakeIdentityAPI) Me(ctx context.Context) (domainauth.Identity, bool, error) {
	f.mu.Lock()
	f.MeCalls++
	gate := f.MeGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domainauth.Identity{}, false, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MeErr != nil {
		return domainauth.Identity{}, false, f.MeErr
	}
	if f.Current == nil {
		return domainauth.Identity{}, false, nil
	}
	return *f.Current, true, nil
}

func (f *FakeIdentityAPI) LoginEmail(_ context.Context, in ports.EmailLoginInput) (domainauth.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[in.Email]
	if !ok || u.Password != in.Password {
		return domainauth.Identity{}, errors.New("Invalid email or password")
	}
	id := u.Identity
	f.Current = &id
	return id, nil
}

func (f *FakeIdentityAPI) Register(_ context.Context, in ports.RegisterInput) (domainauth.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.Users[in.Email]; exists {
		return domainauth.Identity{}, errors.New("Email already registered")
	}
	id := domainauth.Identity{ID: "user-" + in.Email, DisplayName: in.Name, Email: in.Email}
	f.Users[in.Email] = FakeUser{Password: in.Password, Identity: id}
	f.Current = &id
	return id, nil
}

func (f *FakeIdentityAPI) ExchangeSession(_ context.Context, token string) (domainauth.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExchangeCalls++
	id, ok := f.Tokens[token]
	if !ok {
		return domainauth.Identity{}, errors.New("Invalid session")
	}
	delete(f.Tokens, token)
	f.Current = &id
	return id, nil
}

func (f *FakeIdentityAPI) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.Current = nil
	return nil
}

// Counts returns the Me, ExchangeSession and Logout call counts.
func (f *FakeIdentityAPI) Counts() (me, exchange, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MeCalls, f.ExchangeCalls, f.LogoutCalls
}

// MemoryStore is an in-memory durable store for unit tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) getLocked(key string) ([]byte, bool) {
	e, ok := m.values[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.values, key)
		return nil, false
	}
	return e.value, true
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.getLocked(key)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = memoryEntry{value: append([]byte(nil), value...)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Take(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.getLocked(key)
	if !ok {
		return nil, ports.ErrNotFound
	}
	delete(m.values, key)
	return v, nil
}

func (m *MemoryStore) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.getLocked(key); ok {
		return false, nil
	}
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.values[key] = e
	return true, nil
}

// Has reports whether key currently holds a value.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.getLocked(key)
	return ok
}

// RecordingNavigator records navigations instead of performing them.
type RecordingNavigator struct {
	mu      sync.Mutex
	Targets []string
	Err     error
}

func (n *RecordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Targets = append(n.Targets, target)
	return n.Err
}

// Visited returns a copy of the recorded targets.
func (n *RecordingNavigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Targets...)
}

// RecordingPrompt tracks whether the auth prompt is open.
type RecordingPrompt struct {
	mu     sync.Mutex
	open   bool
	Opens  int
	Closes int
	Last   domainauth.PendingAction
}

func (p *RecordingPrompt) Open(_ context.Context, reason domainauth.PendingAction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.Opens++
	p.Last = reason
}

func (p *RecordingPrompt) Close(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		p.Closes++
	}
	p.open = false
}

// IsOpen reports whether the prompt is currently open.
func (p *RecordingPrompt) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
