package filestate

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/rightname-go/internal/ports"
)

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, ports.KeyReturnPath, []byte("/dashboard")))

	second, err := New(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, ports.KeyReturnPath)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", string(got))

	info, err := os.Stat(second.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_TakeOnce(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, ports.KeyPendingAction, []byte("x")))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Take(ctx, ports.KeyPendingAction); err == nil {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, hits)
}

func TestStore_SetIfAbsentExpires(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "exchange:a", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "exchange:a", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, err = s.SetIfAbsent(ctx, "exchange:a", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_MissingAndDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = s.Take(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_StaleLockIsBroken(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	lockPath := dir + "/" + lockName
	require.NoError(t, os.WriteFile(lockPath, nil, 0o600))
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
}

func TestStore_CorruptFileIsReported(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, err = s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrNotFound)
}
