package sealedstate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/rightname-go/internal/cryptoutil"
	authmocks "github.com/target/rightname-go/internal/mocks/auth"
	"github.com/target/rightname-go/internal/ports"
)

func newStore(t *testing.T, secret string) (*Store, *authmocks.MemoryStore) {
	t.Helper()
	sealer, err := cryptoutil.NewAESGCMFromPassphrase(secret)
	require.NoError(t, err)
	inner := authmocks.NewMemoryStore()
	s, err := New(inner, sealer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s, inner
}

func TestStore_SealsValues(t *testing.T) {
	s, inner := newStore(t, "passphrase")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, ports.KeyCookies, []byte(`{"session":"tok"}`)))

	raw, err := inner.Get(ctx, ports.KeyCookies)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok")

	got, err := s.Get(ctx, ports.KeyCookies)
	require.NoError(t, err)
	assert.Equal(t, `{"session":"tok"}`, string(got))
}

func TestStore_TakeRemoves(t *testing.T) {
	s, inner := newStore(t, "passphrase")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, ports.KeyPendingAction, []byte("action")))
	got, err := s.Take(ctx, ports.KeyPendingAction)
	require.NoError(t, err)
	assert.Equal(t, "action", string(got))
	assert.False(t, inner.Has(ports.KeyPendingAction))

	_, err = s.Take(ctx, ports.KeyPendingAction)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_SetIfAbsent(t *testing.T) {
	s, _ := newStore(t, "passphrase")
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, ports.KeyExchangePrefix+"t1", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, ports.KeyExchangePrefix+"t1", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PlaintextReadsAsAbsent(t *testing.T) {
	s, inner := newStore(t, "passphrase")
	ctx := context.Background()

	require.NoError(t, inner.Set(ctx, ports.KeyUserAuthenticated, []byte("true")))
	_, err := s.Get(ctx, ports.KeyUserAuthenticated)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_OtherKeyReadsAsAbsent(t *testing.T) {
	first, inner := newStore(t, "first")
	ctx := context.Background()
	require.NoError(t, first.Set(ctx, ports.KeyReturnPath, []byte("/reports/R1")))

	sealer, err := cryptoutil.NewAESGCMFromPassphrase("second")
	require.NoError(t, err)
	second, err := New(inner, sealer, nil)
	require.NoError(t, err)

	_, err = second.Get(ctx, ports.KeyReturnPath)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, cryptoutil.Noop{}, nil)
	require.Error(t, err)
	_, err = New(authmocks.NewMemoryStore(), nil, nil)
	require.Error(t, err)
}
