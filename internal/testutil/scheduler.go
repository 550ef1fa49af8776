package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/target/rightname-go/internal/ports"
)

// ManualScheduler is a ports.Scheduler driven by Advance instead of wall-clock time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	id       int
	interval time.Duration
	next     time.Duration
	fn       func()
	stopped  bool
	owner    *ManualScheduler
}

// NewManualScheduler returns a scheduler whose virtual clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

var _ ports.Scheduler = (*ManualScheduler)(nil)

// Every registers fn to fire each time the virtual clock crosses a multiple of interval.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) ports.TaskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{id: s.seq, interval: interval, next: s.now + interval, fn: fn, owner: s}
	if interval <= 0 || fn == nil {
		task.stopped = true
		return task
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Stop cancels the task.
func (t *manualTask) Stop() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.stopped = true
}

// Advance moves the virtual clock forward by d, firing due ticks in time order. Ticks
// due at the same instant fire in registration order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		task := s.nextDueLocked(target)
		if task == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = task.next
		task.next += task.interval
		fn := task.fn
		s.mu.Unlock()

		fn()
	}
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].next == live[j].next {
			return live[i].id < live[j].id
		}
		return live[i].next < live[j].next
	})
	if live[0].next > target {
		return nil
	}
	return live[0]
}

// Active reports how many tasks have not been stopped.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Now returns the virtual elapsed time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
