package progress

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/ports"
)

// Snapshot is a point-in-time view of a tracked job.
type Snapshot struct {
	Displayed int
	Reported  int
	Stage     model.Stage
	Completed []model.Stage
	ETA       time.Duration
	Done      bool
	Failed    bool
}

// StageLabel returns the label of the current stage.
func (s Snapshot) StageLabel() string { return s.Stage.Label() }

// IsCompleted reports whether stage is in the completed set.
func (s Snapshot) IsCompleted(stage model.Stage) bool {
	return slices.Contains(s.Completed, stage)
}

// JobError reports a failed job together with the progress reached before it failed.
type JobError struct {
	JobID    string
	Reason   string
	Snapshot Snapshot
}

func (e *JobError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "evaluation failed"
	}
	if e.JobID == "" {
		return fmt.Sprintf("%s (at %d%%, %s)", reason, e.Snapshot.Reported, e.Snapshot.Stage)
	}
	return fmt.Sprintf("job %s: %s (at %d%%, %s)", e.JobID, reason, e.Snapshot.Reported, e.Snapshot.Stage)
}

// Tracker adds stage bookkeeping for the fixed evaluation pipeline to an Estimator.
// The current stage only moves forward; completed stages only grow. After Finish or Fail
// the tracker is frozen.
type Tracker struct {
	jobID string
	est   *Estimator

	mu        sync.Mutex
	stage     model.Stage
	completed map[model.Stage]struct{}
	done      bool
	failed    bool
}

// NewTracker returns a tracker positioned at the starting pseudo-stage.
func NewTracker(jobID string, opts Options) *Tracker {
	return &Tracker{
		jobID:     jobID,
		est:       NewEstimator(opts),
		stage:     model.StageStarting,
		completed: make(map[model.Stage]struct{}),
	}
}

// Start begins ticking the estimator.
func (t *Tracker) Start() { t.est.Start() }

// Stop cancels the timers without changing the displayed state.
func (t *Tracker) Stop() { t.est.Stop() }

// Apply folds a server sample into the tracker.
func (t *Tracker) Apply(s ports.ProgressSample) {
	if t.frozen() {
		return
	}
	t.est.Observe(s.Percent, s.ETA, s.HasETA)
	for _, st := range s.Completed {
		t.MarkCompleted(st)
	}
	if s.Stage != "" {
		t.MarkCurrent(s.Stage)
	}
}

// MarkCurrent moves the current stage to stage if it is a pipeline stage at or after the
// current one. It reports whether the stage was accepted.
func (t *Tracker) MarkCurrent(stage model.Stage) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.failed || !stage.IsPipeline() {
		return false
	}
	if stage.Rank() < t.stage.Rank() {
		return false
	}
	t.stage = stage
	return true
}

// MarkCompleted adds stage to the completed set. Re-marking is a no-op.
func (t *Tracker) MarkCompleted(stage model.Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.failed || !stage.IsPipeline() {
		return
	}
	t.completed[stage] = struct{}{}
}

// Finish completes every stage, freezes the display on the terminal stage and forces
// the displayed percentage to 100. A failed tracker is left as it was.
func (t *Tracker) Finish() Snapshot {
	t.mu.Lock()
	if t.failed {
		t.mu.Unlock()
		return t.Snapshot()
	}
	if !t.done {
		for _, st := range model.PipelineStages {
			t.completed[st] = struct{}{}
		}
		t.stage = model.StageDone
		t.done = true
	}
	t.mu.Unlock()

	t.est.Complete()
	return t.Snapshot()
}

// Fail stops the timers and returns a JobError holding the progress reached so far.
// Nothing is reset.
func (t *Tracker) Fail(reason string) *JobError {
	t.mu.Lock()
	if !t.done {
		t.failed = true
	}
	t.mu.Unlock()

	t.est.Stop()
	return &JobError{JobID: t.jobID, Reason: reason, Snapshot: t.Snapshot()}
}

// Snapshot returns the current state. Completed stages are in pipeline order.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	completed := make([]model.Stage, 0, len(t.completed))
	for _, st := range model.PipelineStages {
		if _, ok := t.completed[st]; ok {
			completed = append(completed, st)
		}
	}
	return Snapshot{
		Displayed: t.est.Displayed(),
		Reported:  t.est.Reported(),
		Stage:     t.stage,
		Completed: completed,
		ETA:       t.est.ETA(),
		Done:      t.done,
		Failed:    t.failed,
	}
}

func (t *Tracker) frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done || t.failed
}
