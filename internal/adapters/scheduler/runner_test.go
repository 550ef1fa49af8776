package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicker_EveryFiresUntilStopped(t *testing.T) {
	var n atomic.Int32
	h := New().Every(5*time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)

	h.Stop()
	h.Stop()
	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load(), "no ticks after Stop")
}

func TestTicker_NonPositiveIntervalNeverFires(t *testing.T) {
	var n atomic.Int32
	h := New().Every(0, func() { n.Add(1) })
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	assert.Zero(t, n.Load())
}
