// Package sealedstate encrypts durable store values at rest.
package sealedstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/rightname-go/internal/cryptoutil"
	"github.com/target/rightname-go/internal/ports"
)

// Store wraps a DurableStore and seals every value it writes. Keys stay in the clear.
//
// A value that cannot be opened (written before encryption was enabled, or under another
// key) reads as absent. Client state is recoverable, so losing it only forces a re-login.
type Store struct {
	inner  ports.DurableStore
	sealer cryptoutil.Sealer
	logger *slog.Logger
}

var _ ports.DurableStore = (*Store)(nil)

// New wraps inner with sealer.
func New(inner ports.DurableStore, sealer cryptoutil.Sealer, logger *slog.Logger) (*Store, error) {
	if inner == nil {
		return nil, errors.New("sealedstate: inner store is required")
	}
	if sealer == nil {
		return nil, errors.New("sealedstate: sealer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{inner: inner, sealer: sealer, logger: logger.With("component", "sealed_state")}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, raw)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Store) Take(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Take(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, raw)
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return false, fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.SetIfAbsent(ctx, key, sealed, ttl)
}

func (s *Store) open(key string, raw []byte) ([]byte, error) {
	value, err := s.sealer.Open(raw)
	if err != nil {
		s.logger.Warn("discarding unreadable state value", "key", key, "error", err)
		return nil, ports.ErrNotFound
	}
	return value, nil
}
