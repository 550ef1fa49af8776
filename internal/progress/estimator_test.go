package progress

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/rightname-go/internal/testutil"
)

func newTestEstimator(t *testing.T) (*Estimator, *testutil.ManualScheduler) {
	t.Helper()
	sched := testutil.NewManualScheduler()
	e := NewEstimator(Options{
		SmoothInterval: 50 * time.Millisecond,
		SmoothStep:     1,
		ETAInterval:    time.Second,
		InitialETA:     90 * time.Second,
		Scheduler:      sched,
	})
	e.Start()
	t.Cleanup(e.Stop)
	return e, sched
}

func TestEstimator_SparseSamplesScenario(t *testing.T) {
	e, sched := newTestEstimator(t)

	e.Observe(40, 60*time.Second, true)

	last := e.Displayed()
	for range 200 { // 10 seconds of 50ms ticks
		sched.Advance(50 * time.Millisecond)
		d := e.Displayed()
		assert.GreaterOrEqual(t, d, last, "displayed regressed")
		assert.LessOrEqual(t, d, 40, "displayed ran ahead of reported")
		last = d
	}
	assert.Equal(t, 40, e.Displayed())
	assert.Equal(t, 50*time.Second, e.ETA())

	e.Observe(41, 55*time.Second, true)
	assert.Equal(t, 55*time.Second, e.ETA())

	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, 41, e.Displayed())
}

func TestEstimator_SmoothingIsGradual(t *testing.T) {
	e, sched := newTestEstimator(t)

	e.Observe(10, 0, false)
	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, e.Displayed())
	sched.Advance(200 * time.Millisecond)
	assert.Equal(t, 5, e.Displayed())
}

func TestEstimator_NeverDecreases(t *testing.T) {
	e, sched := newTestEstimator(t)
	r := rand.New(rand.NewSource(7))

	last := 0
	for range 500 {
		e.Observe(r.Intn(120)-10, time.Duration(r.Intn(100))*time.Second, r.Intn(2) == 0)
		sched.Advance(time.Duration(r.Intn(120)) * time.Millisecond)
		d := e.Displayed()
		require.GreaterOrEqual(t, d, last)
		require.LessOrEqual(t, d, e.Reported())
		last = d
	}
}

func TestEstimator_LowerSampleIgnored(t *testing.T) {
	e, _ := newTestEstimator(t)

	e.Observe(60, 0, false)
	e.Observe(30, 0, false)
	e.Observe(150, 0, false)
	assert.Equal(t, 100, e.Reported())
}

func TestEstimator_CountdownClampsAtZero(t *testing.T) {
	e, sched := newTestEstimator(t)

	e.Observe(5, 3*time.Second, true)
	sched.Advance(10 * time.Second)
	assert.Equal(t, time.Duration(0), e.ETA())

	// Countdown stays at zero until a fresh sample arrives.
	sched.Advance(10 * time.Second)
	assert.Equal(t, time.Duration(0), e.ETA())

	e.Observe(6, 20*time.Second, true)
	assert.Equal(t, 20*time.Second, e.ETA())
	sched.Advance(2 * time.Second)
	assert.Equal(t, 18*time.Second, e.ETA())
}

func TestEstimator_InitialETACountsDown(t *testing.T) {
	e, sched := newTestEstimator(t)

	sched.Advance(5 * time.Second)
	assert.Equal(t, 85*time.Second, e.ETA())

	// A sample without ETA leaves the countdown alone.
	e.Observe(10, 0, false)
	assert.Equal(t, 85*time.Second, e.ETA())
}

func TestEstimator_CompleteForces100AndStops(t *testing.T) {
	e, sched := newTestEstimator(t)

	e.Observe(97, 4*time.Second, true)
	sched.Advance(time.Second)
	require.Less(t, e.Displayed(), 97)

	e.Complete()
	assert.Equal(t, 100, e.Displayed())
	assert.Equal(t, time.Duration(0), e.ETA())
	assert.Equal(t, 0, sched.Active())
}

func TestEstimator_StopIsIdempotent(t *testing.T) {
	e, sched := newTestEstimator(t)
	require.Equal(t, 2, sched.Active())

	e.Stop()
	e.Stop()
	assert.Equal(t, 0, sched.Active())

	e.Observe(50, time.Minute, true)
	sched.Advance(time.Second)
	assert.Equal(t, 0, e.Displayed())
	assert.Equal(t, 0, e.Reported())

	// Start after Stop stays stopped.
	e.Start()
	assert.Equal(t, 0, sched.Active())
}
