package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/rightname-go/config"
	"github.com/target/rightname-go/internal/adapters/filestate"
	redisadapter "github.com/target/rightname-go/internal/adapters/redis"
	"github.com/target/rightname-go/internal/adapters/sealedstate"
	"github.com/target/rightname-go/internal/cryptoutil"
	"github.com/target/rightname-go/internal/ports"
)

// StateConfig contains configuration for the durable client state.
type StateConfig struct {
	State  config.StateConfig
	Redis  config.RedisConfig
	Logger *slog.Logger
}

// StateBackend is an opened durable store plus the resources to release with it.
type StateBackend struct {
	Store ports.DurableStore
	// Location describes where state lives, without credentials.
	Location string
	closeFn  func() error
}

// Close releases the backend connection, if any.
func (b *StateBackend) Close() error {
	if b == nil || b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// OpenState opens the configured durable store, sealing values when an encryption key is set.
func OpenState(ctx context.Context, cfg StateConfig) (*StateBackend, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.State.EncryptionKey == "" {
		return backend, nil
	}
	sealer, err := cryptoutil.NewAESGCMFromPassphrase(cfg.State.EncryptionKey)
	if err == nil {
		backend.Store, err = sealedstate.New(backend.Store, sealer, cfg.Logger)
	}
	if err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("state encryption: %w", err)
	}
	return backend, nil
}

func openBackend(ctx context.Context, cfg StateConfig) (*StateBackend, error) {
	switch cfg.State.Backend {
	case config.StateBackendRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return &StateBackend{
			Store:    redisadapter.NewStateStoreWithPrefix(client, cfg.State.KeyPrefix),
			Location: "redis",
			closeFn:  client.Close,
		}, nil
	default:
		store, err := filestate.New(cfg.State.Dir)
		if err != nil {
			return nil, fmt.Errorf("open state dir: %w", err)
		}
		return &StateBackend{Store: store, Location: store.Path()}, nil
	}
}

// ConnectRedis establishes a connection to Redis.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single or sentinel clients at runtime.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	var (
		client   redis.UniversalClient
		addrDesc string
		err      error
	)

	if cfg.UseSentinel {
		client, addrDesc, err = newSentinelClient(cfg)
	} else {
		client, addrDesc, err = newDirectClient(cfg)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Debug("redis connected", "addr", redactAddr(addrDesc))
	}
	return client, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newSentinelClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	nodes := normalizeAddrs(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}

	opts := &redis.FailoverOptions{
		MasterName:    cfg.SentinelMasterName,
		SentinelAddrs: nodes,
		Password:      cfg.Password,
		DB:            cfg.DB,
	}
	return redis.NewFailoverClient(opts), "sentinel:" + cfg.SentinelMasterName, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), uri, nil
	}

	opts := &redis.Options{
		Addr:     uri,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	return redis.NewClient(opts), uri, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// redactAddr strips credentials from a redis address for logging.
func redactAddr(addr string) string {
	if u, err := url.Parse(addr); err == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addr, "@"); i > -1 {
		return addr[i+1:]
	}
	return addr
}
