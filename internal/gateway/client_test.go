package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/target/rightname-go/internal/mocks/auth"
	"github.com/target/rightname-go/internal/ports"
)

func newTestClient(t *testing.T, srv *httptest.Server, store ports.DurableStore, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(context.Background(), Config{BaseURL: srv.URL + "/api", Timeout: timeout, Store: store})
	require.NoError(t, err)
	return c
}

func TestClient_JSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login/email", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "rightname-go", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"u1"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil, time.Second)
	var out struct {
		UserID string `json:"user_id"`
	}
	err := c.JSON(context.Background(), http.MethodPost, "/auth/login/email", map[string]string{"email": "a"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "u1", out.UserID)
}

func TestClient_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		kind    Kind
		status  int
		reason  string
	}{
		{
			name: "server error with detail",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
			},
			kind: KindServer, status: http.StatusUnauthorized, reason: "Invalid email or password",
		},
		{
			name: "validation detail list",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"}]}`))
			},
			kind: KindServer, status: http.StatusUnprocessableEntity, reason: "field required",
		},
		{
			name: "non-json error body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
			},
			kind: KindServer, status: http.StatusBadGateway,
		},
		{
			name: "timeout",
			handler: func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
			timeout: 20 * time.Millisecond,
			kind:    KindTimeout,
		},
		{
			name: "malformed success body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			kind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			c := newTestClient(t, srv, nil, timeout)

			var out map[string]any
			err := c.JSON(context.Background(), http.MethodGet, "/reports/r1", nil, &out)
			require.Error(t, err)

			ge, ok := AsError(err)
			require.True(t, ok, "error must be *gateway.Error: %v", err)
			assert.Equal(t, tt.kind, ge.Kind)
			assert.Equal(t, tt.status, ge.Status)
			assert.Equal(t, tt.reason, ge.Reason)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv, nil, time.Second)
	srv.Close()

	_, err := c.Send(context.Background(), Request{Path: "/auth/me"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func TestClient_CallerCancellationIsUnwrappable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	c := newTestClient(t, srv, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.Send(ctx, Request{Path: "/auth/me"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_PersistsCookiesAcrossInstances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/session":
			http.SetCookie(w, &http.Cookie{Name: "session_token", Value: "abc", Path: "/"})
			_, _ = w.Write([]byte(`{}`))
		case "/api/auth/me":
			ck, err := r.Cookie("session_token")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"user_id":"` + ck.Value + `"}`))
		}
	}))
	defer srv.Close()

	store := mocks.NewMemoryStore()
	ctx := context.Background()

	first := newTestClient(t, srv, store, time.Second)
	_, err := first.Send(ctx, Request{Method: http.MethodPost, Path: "/auth/session"})
	require.NoError(t, err)
	assert.True(t, store.Has(ports.KeyCookies))

	second := newTestClient(t, srv, store, time.Second)
	body, err := second.Send(ctx, Request{Path: "/auth/me"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"abc"}`, string(body))

	require.NoError(t, second.ClearCredentials(ctx))
	assert.False(t, store.Has(ports.KeyCookies))
	_, err = second.Send(ctx, Request{Path: "/auth/me"})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(context.Background(), Config{BaseURL: "/api"})
	require.Error(t, err)
}
