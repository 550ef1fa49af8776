package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Evaluation service endpoint and request ceiling
//   - auth.go: Identity provider and callback listener configuration
//   - state.go: Durable client state backend (file or Redis)
//   - progress.go: Progress smoothing, countdown and polling
//   - logging.go: Structured logging
type AppConfig struct {
	// API configuration
	API APIConfig

	// Authentication configuration
	Auth AuthConfig

	// Durable client state configuration
	State StateConfig
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Job progress configuration
	Progress ProgressConfig

	// Logging configuration
	Logging LoggingConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.State.Sanitize()
	c.Progress.Sanitize()
	c.Logging.Sanitize()
}

// Validate reports configuration combinations that cannot work at runtime.
func (c *AppConfig) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Progress.Validate()
}
