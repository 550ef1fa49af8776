package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StateBackend selects where durable client state lives.
type StateBackend string

const (
	// StateBackendFile keeps state in a JSON file under StateConfig.Dir.
	StateBackendFile StateBackend = "file"
	// StateBackendRedis keeps state in Redis, shared across machines.
	StateBackendRedis StateBackend = "redis"
)

// StateConfig contains durable client state configuration.
type StateConfig struct {
	Backend StateBackend `env:"STATE_BACKEND" envDefault:"file"`

	// Dir holds the state file when Backend is file. Defaults to $HOME/.rightname.
	Dir string `env:"STATE_DIR"`

	// KeyPrefix namespaces keys in shared backends.
	KeyPrefix string `env:"STATE_KEY_PREFIX" envDefault:"rightname:"`

	// ExchangeTTL is how long a consumed exchange token is remembered.
	ExchangeTTL time.Duration `env:"STATE_EXCHANGE_TTL" envDefault:"24h"`

	// EncryptionKey seals stored values when set. A 64-char hex string is used as the raw
	// AES-256 key; any other value is hashed.
	EncryptionKey string `env:"STATE_ENCRYPTION_KEY"`
}

// Sanitize applies guardrails to state configuration values.
func (s *StateConfig) Sanitize() {
	s.Backend = StateBackend(strings.ToLower(strings.TrimSpace(string(s.Backend))))
	if s.Backend != StateBackendRedis {
		s.Backend = StateBackendFile
	}
	if strings.TrimSpace(s.Dir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		s.Dir = filepath.Join(home, ".rightname")
	}
	if s.ExchangeTTL < time.Minute {
		s.ExchangeTTL = time.Minute
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}
