// Package scheduler provides the ticker-backed task scheduler used by the progress timers.
package scheduler

import (
	"sync"
	"time"

	"github.com/target/rightname-go/internal/ports"
)

// Ticker schedules periodic tasks on time.Ticker goroutines.
type Ticker struct{}

// New returns a ticker-backed scheduler.
func New() *Ticker { return &Ticker{} }

var _ ports.Scheduler = (*Ticker)(nil)

// Every starts a goroutine calling fn at interval until the handle is stopped.
// A non-positive interval yields a handle that never fires.
func (t *Ticker) Every(interval time.Duration, fn func()) ports.TaskHandle {
	h := &handle{done: make(chan struct{})}
	if interval <= 0 || fn == nil {
		h.Stop()
		return h
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				// Stop wins over a tick that raced with it.
				select {
				case <-h.done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

type handle struct {
	once sync.Once
	done chan struct{}
}

func (h *handle) Stop() {
	h.once.Do(func() { close(h.done) })
}
