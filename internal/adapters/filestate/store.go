// Package filestate keeps durable client state in a JSON file, the default backend for a
// single-user CLI.
package filestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/target/rightname-go/internal/ports"
)

const (
	fileName     = "state.json"
	lockName     = "state.lock"
	lockRetry    = 10 * time.Millisecond
	lockWait     = 2 * time.Second
	lockStaleAge = 10 * time.Second
)

// Store is a file-backed ports.DurableStore. Every operation is a locked
// read-modify-write of the whole file; a lock file serializes processes.
type Store struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

type entry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

var _ ports.DurableStore = (*Store)(nil)

// New creates the state directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("state dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Path returns the state file location.
func (s *Store) Path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.update(ctx, false, func(m map[string]entry) error {
		e, ok := m[key]
		if !ok {
			return ports.ErrNotFound
		}
		out = e.Value
		return nil
	})
	return out, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	return s.update(ctx, true, func(m map[string]entry) error {
		m[key] = entry{Value: append([]byte(nil), value...)}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.update(ctx, true, func(m map[string]entry) error {
		delete(m, key)
		return nil
	})
}

func (s *Store) Take(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.update(ctx, true, func(m map[string]entry) error {
		e, ok := m[key]
		if !ok {
			return ports.ErrNotFound
		}
		out = e.Value
		delete(m, key)
		return nil
	})
	return out, err
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("state key cannot be empty")
	}
	set := false
	err := s.update(ctx, true, func(m map[string]entry) error {
		if _, ok := m[key]; ok {
			return nil
		}
		e := entry{Value: append([]byte(nil), value...)}
		if ttl > 0 {
			e.ExpiresAt = s.now().Add(ttl)
		}
		m[key] = e
		set = true
		return nil
	})
	return set, err
}

// update loads the file, drops expired entries, applies fn and, when write is set and fn
// succeeded, writes the result back through a temp file and rename.
func (s *Store) update(ctx context.Context, write bool, fn func(map[string]entry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return s.save(m)
}

func (s *Store) load() (map[string]entry, error) {
	m := make(map[string]entry)
	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", s.Path(), err)
	}
	now := s.now()
	for k, e := range m {
		if !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt) {
			delete(m, k)
		}
	}
	return m, nil
}

func (s *Store) save(m map[string]entry) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// lock takes the cross-process lock file, breaking it when it is older than lockStaleAge.
func (s *Store) lock(ctx context.Context) (func(), error) {
	path := filepath.Join(s.dir, lockName)
	deadline := time.Now().Add(lockWait)
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("lock state: %w", err)
		}
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStaleAge {
			os.Remove(path)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock state: timed out waiting for %s", path)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}
