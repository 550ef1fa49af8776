package config

import (
	"fmt"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// ProgressConfig controls how job progress is polled, smoothed and counted down.
type ProgressConfig struct {
	// SmoothInterval is the tick at which the displayed percentage advances.
	SmoothInterval time.Duration `env:"PROGRESS_SMOOTH_INTERVAL" envDefault:"50ms"`
	// SmoothStep is the largest advance per tick, in percentage points.
	SmoothStep int `env:"PROGRESS_SMOOTH_STEP" envDefault:"1"`
	// ETAInterval is the countdown tick.
	ETAInterval time.Duration `env:"PROGRESS_ETA_INTERVAL" envDefault:"1s"`
	// InitialETA seeds the countdown before the first sample arrives.
	InitialETA time.Duration `env:"PROGRESS_INITIAL_ETA" envDefault:"90s"`
	// PollInterval paces status requests for asynchronous jobs.
	PollInterval time.Duration `env:"PROGRESS_POLL_INTERVAL" envDefault:"2s"`

	// JMESPath expressions mapping the job status document into a progress sample.
	Exprs ProgressExprs `envPrefix:"PROGRESS_EXPR_"`
}

// ProgressExprs holds the JMESPath expressions used by the status poller.
type ProgressExprs struct {
	Status    string `env:"STATUS"    envDefault:"status"`
	Percent   string `env:"PERCENT"   envDefault:"progress"`
	Stage     string `env:"STAGE"     envDefault:"current_step"`
	Completed string `env:"COMPLETED" envDefault:"completed_steps"`
	ETA       string `env:"ETA"       envDefault:"eta_seconds"`
	Result    string `env:"RESULT"    envDefault:"result"`
	Error     string `env:"ERROR"     envDefault:"error"`
}

// All returns the expressions keyed by name, for validation and logging.
func (e ProgressExprs) All() map[string]string {
	return map[string]string{
		"status":    e.Status,
		"percent":   e.Percent,
		"stage":     e.Stage,
		"completed": e.Completed,
		"eta":       e.ETA,
		"result":    e.Result,
		"error":     e.Error,
	}
}

// Sanitize applies guardrails to progress configuration values.
func (p *ProgressConfig) Sanitize() {
	if p.SmoothInterval <= 0 {
		p.SmoothInterval = 50 * time.Millisecond
	}
	if p.SmoothStep < 1 {
		p.SmoothStep = 1
	}
	if p.SmoothStep > 100 {
		p.SmoothStep = 100
	}
	if p.ETAInterval <= 0 {
		p.ETAInterval = time.Second
	}
	if p.InitialETA < 0 {
		p.InitialETA = 0
	}
	if p.PollInterval < 100*time.Millisecond {
		p.PollInterval = 100 * time.Millisecond
	}
}

// Validate compiles every configured expression.
func (p *ProgressConfig) Validate() error {
	for name, expr := range p.Exprs.All() {
		if expr == "" {
			return fmt.Errorf("PROGRESS_EXPR_%s must not be empty", name)
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return fmt.Errorf("invalid %s expression %q: %w", name, expr, err)
		}
	}
	return nil
}
