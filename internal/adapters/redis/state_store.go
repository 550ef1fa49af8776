package redis

// Package redis provides the Redis-backed durable client state store, for clients that share
// state across machines.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/rightname-go/internal/ports"
)

// StateStore is a Redis-based ports.DurableStore. Take uses GETDEL and SetIfAbsent uses
// SET NX, so both stay atomic across processes.
type StateStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.DurableStore = (*StateStore)(nil)

// NewStateStore creates a Redis state store with the default key prefix.
func NewStateStore(client redis.UniversalClient) *StateStore {
	return &StateStore{
		client: client,
		prefix: "rightname:",
	}
}

// NewStateStoreWithPrefix creates a Redis state store with a custom key prefix.
func NewStateStoreWithPrefix(client redis.UniversalClient, prefix string) *StateStore {
	return &StateStore{
		client: client,
		prefix: prefix,
	}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrNotFound
	}
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *StateStore) Take(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrNotFound
	}
	data, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	return data, nil
}

func (s *StateStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("state key cannot be empty")
	}
	args := redis.SetArgs{Mode: "NX"}
	if ttl > 0 {
		args.TTL = ttl
	}
	err := s.client.SetArgs(ctx, s.prefix+key, value, args).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set nx: %w", err)
	}
	return true, nil
}
