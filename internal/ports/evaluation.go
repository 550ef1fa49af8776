package ports

import (
	"context"
	"time"

	"github.com/target/rightname-go/internal/domain/model"
)

// EvaluationAPI is the evaluation boundary of the service.
type EvaluationAPI interface {
	// Evaluate runs a synchronous evaluation and returns the full report.
	Evaluate(ctx context.Context, req model.EvaluationRequest) (*model.Report, error)
	// StartEvaluation queues an asynchronous evaluation.
	StartEvaluation(ctx context.Context, req model.EvaluationRequest) (model.JobHandle, error)
	// JobStatus returns the raw status document for an asynchronous evaluation.
	JobStatus(ctx context.Context, jobID string) ([]byte, error)
	// Report fetches a stored report by id.
	Report(ctx context.Context, id string) (*model.Report, error)
}

// ProgressSample is one reported observation of a running job.
type ProgressSample struct {
	Status    model.JobStatus
	Percent   int
	HasETA    bool
	ETA       time.Duration
	Stage     model.Stage
	Completed []model.Stage
	// Result holds the raw report document once Status is completed.
	Result []byte
	// Error carries the server's failure reason once Status is failed.
	Error string
}

// ProgressFeed delivers samples for a job until it reaches a terminal status
// or ctx is canceled. The returned channel is closed when the feed ends.
type ProgressFeed interface {
	Watch(ctx context.Context, jobID string) (<-chan ProgressSample, <-chan error)
}

// TaskHandle stops a scheduled task. Stop is idempotent and waits for no tick.
type TaskHandle interface {
	Stop()
}

// Scheduler runs fn every interval until the returned handle is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) TaskHandle
}
