package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by DurableStore when a key holds no value.
var ErrNotFound = errors.New("state: key not found")

// DurableStore persists small client values across process restarts.
// Implementations must make Take and SetIfAbsent atomic with respect to other callers
// of the same store, including other processes sharing the backend.
type DurableStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes it in one step. ErrNotFound when absent.
	Take(ctx context.Context, key string) ([]byte, error)
	// SetIfAbsent stores value only when key is unset, returning false when it was already set.
	// A non-positive ttl keeps the value until it is deleted.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// Durable keys shared by the session components.
const (
	KeyReturnPath        = "auth_return_url"
	KeyPendingAction     = "pending_action"
	KeyUserAuthenticated = "user_authenticated"
	KeyLoginState        = "login_state"
	KeyCookies           = "cookies"
	KeyExchangePrefix    = "exchange:"
)
