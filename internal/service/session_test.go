package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/mocks"
	authmocks "github.com/target/rightname-go/internal/mocks/auth"
	"github.com/target/rightname-go/internal/ports"
)

var ada = domainauth.Identity{ID: "u-1", DisplayName: "Ada Lovelace", Email: "ada@example.com"}

type clearRecorder struct {
	mu    sync.Mutex
	calls int
}

func (c *clearRecorder) ClearCredentials(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func TestSessionService_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		id     domainauth.Identity
		ok     bool
		err    error
		status domainauth.SessionStatus
	}{
		{name: "authenticated", id: ada, ok: true, status: domainauth.StatusAuthenticated},
		{name: "no session", status: domainauth.StatusAnonymous},
		{
			name:   "network failure is anonymous",
			err:    &gateway.Error{Kind: gateway.KindNetwork, Cause: errors.New("refused")},
			status: domainauth.StatusAnonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockIdentityAPI(ctrl)
			api.EXPECT().Me(gomock.Any()).Return(tt.id, tt.ok, tt.err)

			svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
			assert.Equal(t, domainauth.StatusUnresolved, svc.State().Status)

			state := svc.Resolve(context.Background())
			assert.Equal(t, tt.status, state.Status)
			if tt.ok {
				assert.Equal(t, tt.id, state.Identity)
			}
		})
	}
}

func TestSessionService_StartResolvesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockIdentityAPI(ctrl)
	api.EXPECT().Me(gomock.Any()).Return(ada, true, nil).Times(1)

	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	assert.True(t, svc.Start(ctx).IsAuthenticated())
	assert.True(t, svc.Start(ctx).IsAuthenticated())

	state, err := svc.WaitResolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, ada, state.Identity)
}

func TestSessionService_WaitResolvedHonoursContext(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{API: authmocks.NewFakeIdentityAPI(), Store: authmocks.NewMemoryStore()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	state, err := svc.WaitResolved(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, state.IsResolved())
}

func TestSessionService_StaleResolveDoesNotOverrideLogout(t *testing.T) {
	api := authmocks.NewFakeIdentityAPI()
	api.SetCurrent(&ada)
	gate := make(chan struct{})
	api.MeGate = gate

	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	done := make(chan domainauth.SessionState, 1)
	go func() { done <- svc.Resolve(ctx) }()

	require.Eventually(t, func() bool {
		me, _, _ := api.Counts()
		return me == 1
	}, time.Second, time.Millisecond)

	svc.Logout(ctx)
	assert.Equal(t, domainauth.StatusAnonymous, svc.State().Status)

	// The server still considered the user logged in when the resolve was answered.
	api.SetCurrent(&ada)
	close(gate)

	select {
	case state := <-done:
		assert.Equal(t, domainauth.StatusAnonymous, state.Status)
	case <-time.After(time.Second):
		t.Fatal("resolve did not return")
	}
	assert.Equal(t, domainauth.StatusAnonymous, svc.State().Status)
}

func TestSessionService_CanceledResolveKeepsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockIdentityAPI(ctrl)
	api.EXPECT().Me(gomock.Any()).DoAndReturn(func(ctx context.Context) (domainauth.Identity, bool, error) {
		return domainauth.Identity{}, false, ctx.Err()
	})

	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	svc.SetAuthenticated(context.Background(), ada)

	var transitions []string
	svc.Subscribe(func(_ context.Context, prev, next domainauth.SessionState) {
		transitions = append(transitions, prev.String()+"->"+next.String())
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state := svc.Resolve(ctx)

	assert.True(t, state.IsAuthenticated())
	assert.True(t, svc.State().IsAuthenticated())
	assert.Empty(t, transitions)
}

func TestSessionService_CanceledStartupResolveSettlesAnonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockIdentityAPI(ctrl)
	api.EXPECT().Me(gomock.Any()).DoAndReturn(func(ctx context.Context) (domainauth.Identity, bool, error) {
		return domainauth.Identity{}, false, ctx.Err()
	})

	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, domainauth.StatusAnonymous, svc.Resolve(ctx).Status)
}

func TestSessionService_NotifiesInCommitOrder(t *testing.T) {
	api := authmocks.NewFakeIdentityAPI()
	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu          sync.Mutex
		transitions []domainauth.SessionStatus
	)
	svc.Subscribe(func(_ context.Context, _, next domainauth.SessionState) {
		mu.Lock()
		transitions = append(transitions, next.Status)
		first := len(transitions) == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.SetAuthenticated(ctx, ada)
	}()
	<-entered
	go func() {
		defer wg.Done()
		svc.Logout(ctx)
	}()

	// Logout cannot apply its transition while the login's subscribers run.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, svc.State().IsAuthenticated())

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domainauth.SessionStatus{domainauth.StatusAuthenticated, domainauth.StatusAnonymous}, transitions)
	assert.Equal(t, domainauth.StatusAnonymous, svc.State().Status)
}

func TestSessionService_StaleResolveDoesNotOverrideLogin(t *testing.T) {
	api := authmocks.NewFakeIdentityAPI()
	gate := make(chan struct{})
	api.MeGate = gate

	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		svc.Resolve(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		me, _, _ := api.Counts()
		return me == 1
	}, time.Second, time.Millisecond)

	svc.SetAuthenticated(ctx, ada)
	api.SetCurrent(nil)
	close(gate)
	<-done

	assert.True(t, svc.State().IsAuthenticated())
}

func TestSessionService_LogoutAlwaysSucceedsLocally(t *testing.T) {
	api := authmocks.NewFakeIdentityAPI()
	api.SetCurrent(&ada)
	api.LogoutErr = &gateway.Error{Kind: gateway.KindTimeout}
	store := authmocks.NewMemoryStore()
	creds := &clearRecorder{}

	svc := NewSessionService(SessionServiceOptions{API: api, Store: store, Credentials: creds})
	ctx := context.Background()

	require.True(t, svc.Resolve(ctx).IsAuthenticated())
	assert.True(t, svc.WasEverAuthenticated(ctx))

	svc.Logout(ctx)
	assert.Equal(t, domainauth.StatusAnonymous, svc.State().Status)
	assert.False(t, store.Has(ports.KeyUserAuthenticated))
	assert.Equal(t, 1, creds.calls)
	_, _, logouts := api.Counts()
	assert.Equal(t, 1, logouts)
}

func TestSessionService_SubscribeSeesTransitions(t *testing.T) {
	api := authmocks.NewFakeIdentityAPI()
	svc := NewSessionService(SessionServiceOptions{API: api, Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	var seen []string
	unsubscribe := svc.Subscribe(func(_ context.Context, prev, next domainauth.SessionState) {
		seen = append(seen, string(prev.Status)+"->"+string(next.Status))
	})

	svc.Resolve(ctx)
	svc.Resolve(ctx) // no change, no notification
	svc.SetAuthenticated(ctx, ada)
	svc.Logout(ctx)
	unsubscribe()
	svc.SetAuthenticated(ctx, ada)

	assert.Equal(t, []string{
		"unresolved->anonymous",
		"anonymous->authenticated",
		"authenticated->anonymous",
	}, seen)
}

func TestSessionService_MarkAnonymousKeepsAuthenticated(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{API: authmocks.NewFakeIdentityAPI(), Store: authmocks.NewMemoryStore()})
	ctx := context.Background()

	svc.MarkAnonymous(ctx)
	assert.Equal(t, domainauth.StatusAnonymous, svc.State().Status)

	svc.SetAuthenticated(ctx, ada)
	svc.MarkAnonymous(ctx)
	assert.True(t, svc.State().IsAuthenticated())
}
