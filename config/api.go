package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultRequestTimeout covers a full synchronous evaluation, which performs several
	// external lookups server-side.
	DefaultRequestTimeout = 5 * time.Minute
	minRequestTimeout     = time.Second
)

// APIConfig contains evaluation service configuration.
type APIConfig struct {
	// BaseURL is the API root; endpoint paths such as /auth/me are resolved against it.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8001/api"`

	// RequestTimeout is the ceiling applied to every request.
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"5m"`

	// UserAgent is sent on every request.
	UserAgent string `env:"API_USER_AGENT" envDefault:"rightname-go"`

	// WebURL is the web application root. Relative return paths resolve against it when
	// the CLI hands navigation to the browser. Optional.
	WebURL string `env:"WEB_APP_URL"`

	// PreferAsync starts evaluations through /evaluate/start and polls for progress.
	// When false, or when the server lacks the async endpoints, /evaluate is used.
	PreferAsync bool `env:"API_PREFER_ASYNC" envDefault:"true"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.RequestTimeout <= 0 {
		a.RequestTimeout = DefaultRequestTimeout
	}
	if a.RequestTimeout < minRequestTimeout {
		a.RequestTimeout = minRequestTimeout
	}
	a.WebURL = strings.TrimRight(strings.TrimSpace(a.WebURL), "/")
	if strings.TrimSpace(a.UserAgent) == "" {
		a.UserAgent = "rightname-go"
	}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (a *APIConfig) Validate() error {
	if a.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API_BASE_URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("API_BASE_URL must include a host")
	}
	return nil
}
