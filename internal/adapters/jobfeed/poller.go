// Package jobfeed turns polled job status documents into progress samples.
package jobfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/time/rate"

	"github.com/target/rightname-go/config"
	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

const defaultMaxFailures = 3

// StatusSource returns the raw status document of a job.
type StatusSource interface {
	JobStatus(ctx context.Context, jobID string) ([]byte, error)
}

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	Exprs    config.ProgressExprs
	// MaxFailures is how many consecutive transient errors end the feed.
	MaxFailures int
	Logger      *slog.Logger
}

// Poller implements ports.ProgressFeed by polling the status endpoint at a fixed pace.
type Poller struct {
	src         StatusSource
	interval    time.Duration
	exprs       config.ProgressExprs
	maxFailures int
	logger      *slog.Logger
}

var _ ports.ProgressFeed = (*Poller)(nil)

// New validates the expressions and returns a Poller.
func New(src StatusSource, opts Options) (*Poller, error) {
	if src == nil {
		return nil, errors.New("status source is required")
	}
	for name, expr := range opts.Exprs.All() {
		if strings.TrimSpace(expr) == "" {
			return nil, fmt.Errorf("%s expression is empty", name)
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile %s expression: %w", name, err)
		}
	}
	p := &Poller{
		src:         src,
		interval:    opts.Interval,
		exprs:       opts.Exprs,
		maxFailures: opts.MaxFailures,
		logger:      opts.Logger,
	}
	if p.interval <= 0 {
		p.interval = 2 * time.Second
	}
	if p.maxFailures <= 0 {
		p.maxFailures = defaultMaxFailures
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Watch polls jobID until it reports a terminal status, a non-transient error occurs or
// ctx ends. Both channels are closed when the feed stops; at most one error is sent.
func (p *Poller) Watch(ctx context.Context, jobID string) (<-chan ports.ProgressSample, <-chan error) {
	samples := make(chan ports.ProgressSample)
	errs := make(chan error, 1)

	go func() {
		defer close(samples)
		defer close(errs)
		if err := p.run(ctx, jobID, samples); err != nil {
			errs <- err
		}
	}()
	return samples, errs
}

func (p *Poller) run(ctx context.Context, jobID string, out chan<- ports.ProgressSample) error {
	limiter := rate.NewLimiter(rate.Every(p.interval), 1)
	failures := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		raw, err := p.src.JobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !transient(err) {
				return err
			}
			failures++
			p.logger.WarnContext(ctx, "job status poll failed",
				"job_id", jobID, "attempt", failures, "error", err)
			if failures >= p.maxFailures {
				return fmt.Errorf("job %s status unavailable after %d attempts: %w", jobID, failures, err)
			}
			continue
		}
		failures = 0

		sample, err := p.decode(raw)
		if err != nil {
			return fmt.Errorf("job %s: %w", jobID, err)
		}

		select {
		case out <- sample:
		case <-ctx.Done():
			return ctx.Err()
		}
		if sample.Status.Terminal() {
			return nil
		}
	}
}

// transient reports whether a status poll may simply be repeated.
func transient(err error) bool {
	e, ok := gateway.AsError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case gateway.KindNetwork, gateway.KindTimeout:
		return true
	case gateway.KindServer:
		return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
	default:
		return false
	}
}

func (p *Poller) decode(raw []byte) (ports.ProgressSample, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ports.ProgressSample{}, fmt.Errorf("decode status document: %w", err)
	}

	var s ports.ProgressSample

	status, err := searchString(p.exprs.Status, doc)
	if err != nil {
		return s, err
	}
	if err := s.Status.UnmarshalText([]byte(status)); err != nil {
		return s, err
	}

	if pct, ok, err := searchNumber(p.exprs.Percent, doc); err != nil {
		return s, err
	} else if ok {
		s.Percent = clampPercent(pct)
	}

	if eta, ok, err := searchNumber(p.exprs.ETA, doc); err != nil {
		return s, err
	} else if ok && eta >= 0 {
		s.HasETA = true
		s.ETA = time.Duration(eta * float64(time.Second))
	}

	stage, err := searchString(p.exprs.Stage, doc)
	if err != nil {
		return s, err
	}
	if st := model.Stage(stage); st.Valid() {
		s.Stage = st
	}

	completed, err := jmespath.Search(p.exprs.Completed, doc)
	if err != nil {
		return s, fmt.Errorf("search completed stages: %w", err)
	}
	if list, ok := completed.([]any); ok {
		for _, v := range list {
			if name, ok := v.(string); ok && model.Stage(name).Valid() {
				s.Completed = append(s.Completed, model.Stage(name))
			}
		}
	}

	if s.Error, err = searchString(p.exprs.Error, doc); err != nil {
		return s, err
	}

	result, err := jmespath.Search(p.exprs.Result, doc)
	if err != nil {
		return s, fmt.Errorf("search result: %w", err)
	}
	if result != nil {
		if s.Result, err = json.Marshal(result); err != nil {
			return s, fmt.Errorf("encode result: %w", err)
		}
	}
	return s, nil
}

func searchString(expr string, doc any) (string, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", expr, err)
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return fmt.Sprint(t), nil
	}
}

func searchNumber(expr string, doc any) (float64, bool, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return 0, false, fmt.Errorf("search %q: %w", expr, err)
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false, nil
	}
	return f, true, nil
}

func clampPercent(f float64) int {
	switch {
	case f <= 0:
		return 0
	case f >= 100:
		return 100
	default:
		return int(f)
	}
}
