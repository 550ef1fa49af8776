// Package progress blends sparse server-reported job progress with locally simulated
// progress so the displayed value stays live, never regresses and never runs ahead of
// what the server has confirmed.
package progress

import (
	"sync"
	"time"

	"github.com/target/rightname-go/internal/adapters/scheduler"
	"github.com/target/rightname-go/internal/ports"
)

// Defaults mirror config.ProgressConfig.
const (
	DefaultSmoothInterval = 50 * time.Millisecond
	DefaultSmoothStep     = 1
	DefaultETAInterval    = time.Second
	DefaultInitialETA     = 90 * time.Second
)

// Options configures an Estimator.
type Options struct {
	SmoothInterval time.Duration
	SmoothStep     int
	ETAInterval    time.Duration
	InitialETA     time.Duration
	// Scheduler drives both timers. Defaults to a ticker-backed scheduler.
	Scheduler ports.Scheduler
}

func (o Options) withDefaults() Options {
	if o.SmoothInterval <= 0 {
		o.SmoothInterval = DefaultSmoothInterval
	}
	if o.SmoothStep <= 0 {
		o.SmoothStep = DefaultSmoothStep
	}
	if o.ETAInterval <= 0 {
		o.ETAInterval = DefaultETAInterval
	}
	if o.InitialETA < 0 {
		o.InitialETA = 0
	}
	if o.Scheduler == nil {
		o.Scheduler = scheduler.New()
	}
	return o
}

// Estimator owns the displayed percentage and the ETA countdown.
//
// Displayed only ever increases and never exceeds Reported. Reported is the highest
// percentage any sample has claimed. The countdown decays by one ETAInterval per tick,
// stops at zero, and jumps to the sample value whenever a sample carries an ETA.
type Estimator struct {
	opts Options

	mu        sync.Mutex
	displayed int
	reported  int
	eta       time.Duration
	started   bool
	stopped   bool
	smooth    ports.TaskHandle
	countdown ports.TaskHandle
}

// NewEstimator returns an idle estimator. Call Start to begin ticking.
func NewEstimator(opts Options) *Estimator {
	opts = opts.withDefaults()
	return &Estimator{opts: opts, eta: opts.InitialETA}
}

// Start schedules the smoothing and countdown timers. It is a no-op once started or
// stopped.
func (e *Estimator) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.smooth = e.opts.Scheduler.Every(e.opts.SmoothInterval, e.smoothTick)
	e.countdown = e.opts.Scheduler.Every(e.opts.ETAInterval, e.countdownTick)
}

// Observe records a server sample. Lower or repeated percentages are ignored.
func (e *Estimator) Observe(percent int, eta time.Duration, hasETA bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if p := clamp(percent); p > e.reported {
		e.reported = p
	}
	if hasETA {
		e.eta = max(eta, 0)
	}
}

// Complete forces both percentages to 100 and the countdown to zero, then stops.
func (e *Estimator) Complete() {
	e.mu.Lock()
	e.reported = 100
	e.displayed = 100
	e.eta = 0
	e.mu.Unlock()
	e.Stop()
}

// Stop cancels both timers. Later samples and ticks are ignored. Stop is idempotent.
func (e *Estimator) Stop() {
	e.mu.Lock()
	e.stopped = true
	smooth, countdown := e.smooth, e.countdown
	e.smooth, e.countdown = nil, nil
	e.mu.Unlock()

	if smooth != nil {
		smooth.Stop()
	}
	if countdown != nil {
		countdown.Stop()
	}
}

// Displayed returns the smoothed percentage.
func (e *Estimator) Displayed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayed
}

// Reported returns the highest server-confirmed percentage.
func (e *Estimator) Reported() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reported
}

// ETA returns the current countdown value.
func (e *Estimator) ETA() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eta
}

func (e *Estimator) smoothTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.displayed >= e.reported {
		return
	}
	e.displayed = min(e.displayed+e.opts.SmoothStep, e.reported)
}

func (e *Estimator) countdownTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.eta <= 0 {
		return
	}
	e.eta = max(e.eta-e.opts.ETAInterval, 0)
}

func clamp(p int) int {
	return min(max(p, 0), 100)
}
