package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/rightname-go/internal/adapters/scheduler"
	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/domain/model"
	apperrors "github.com/target/rightname-go/internal/errors"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
	"github.com/target/rightname-go/internal/progress"
)

const defaultRenderInterval = 100 * time.Millisecond

// ObserveFunc receives progress snapshots while a job runs, and the final snapshot
// once it ends.
type ObserveFunc func(progress.Snapshot)

// EvaluationServiceOptions groups dependencies for EvaluationService.
type EvaluationServiceOptions struct {
	API  ports.EvaluationAPI
	Feed ports.ProgressFeed
	// Progress configures the estimator behind every tracked job.
	Progress progress.Options
	// PreferAsync starts jobs and follows them through Feed.
	PreferAsync bool
	// RenderInterval paces ObserveFunc calls.
	RenderInterval time.Duration
	Logger         *slog.Logger
}

// EvaluationService runs evaluations and reports their progress.
type EvaluationService struct {
	api            ports.EvaluationAPI
	feed           ports.ProgressFeed
	progress       progress.Options
	preferAsync    bool
	renderInterval time.Duration
	logger         *slog.Logger
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(opts EvaluationServiceOptions) *EvaluationService {
	s := &EvaluationService{
		api:            opts.API,
		feed:           opts.Feed,
		progress:       opts.Progress,
		preferAsync:    opts.PreferAsync,
		renderInterval: opts.RenderInterval,
		logger:         opts.Logger,
	}
	if s.progress.Scheduler == nil {
		s.progress.Scheduler = scheduler.New()
	}
	if s.renderInterval <= 0 {
		s.renderInterval = defaultRenderInterval
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Evaluate submits req and waits for the report. The asynchronous endpoints are used
// when preferred and available; a server without them (404/405 on start) is evaluated
// synchronously. Nothing is retried.
func (s *EvaluationService) Evaluate(ctx context.Context, req model.EvaluationRequest, observe ObserveFunc) (*model.Report, error) {
	if len(req.BrandNames) == 0 {
		return nil, apperrors.ValidationField("brand_names", "At least one brand name is required.")
	}
	if observe == nil {
		observe = func(progress.Snapshot) {}
	}

	if s.preferAsync && s.feed != nil {
		handle, err := s.api.StartEvaluation(ctx, req)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "evaluation job started", "job_id", handle.ID)
			return s.follow(ctx, handle.ID, observe)
		case gateway.IsStatus(err, http.StatusNotFound, http.StatusMethodNotAllowed):
			s.logger.InfoContext(ctx, "async evaluation unavailable; evaluating synchronously")
		default:
			return nil, fmt.Errorf("start evaluation: %w", err)
		}
	}
	return s.evaluateSync(ctx, req, observe)
}

// follow tracks a started job through the progress feed.
func (s *EvaluationService) follow(ctx context.Context, jobID string, observe ObserveFunc) (*model.Report, error) {
	tracker := progress.NewTracker(jobID, s.progress)
	return s.run(ctx, tracker, observe, func(ctx context.Context) (*model.Report, error) {
		samples, errs := s.feed.Watch(ctx, jobID)
		for sample := range samples {
			tracker.Apply(sample)
			switch sample.Status {
			case model.JobStatusCompleted:
				if len(sample.Result) == 0 {
					return nil, &gateway.Error{Kind: gateway.KindMalformed, Reason: "completed job carried no result"}
				}
				report, err := model.DecodeReport(sample.Result)
				if err != nil {
					return nil, &gateway.Error{Kind: gateway.KindMalformed, Reason: "undecodable job result", Cause: err}
				}
				return report, nil
			case model.JobStatusFailed:
				return nil, tracker.Fail(sample.Error)
			}
		}
		if err := <-errs; err != nil {
			return nil, err
		}
		return nil, ctx.Err()
	})
}

func (s *EvaluationService) evaluateSync(ctx context.Context, req model.EvaluationRequest, observe ObserveFunc) (*model.Report, error) {
	tracker := progress.NewTracker("", s.progress)
	return s.run(ctx, tracker, observe, func(ctx context.Context) (*model.Report, error) {
		return s.api.Evaluate(ctx, req)
	})
}

// run drives work while rendering tracker snapshots, then settles the tracker: Finish
// on success, Fail with progress retained otherwise.
func (s *EvaluationService) run(
	ctx context.Context,
	tracker *progress.Tracker,
	observe ObserveFunc,
	work func(ctx context.Context) (*model.Report, error),
) (*model.Report, error) {
	tracker.Start()
	defer tracker.Stop()

	var report *model.Report
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(done)
		var err error
		report, err = work(gctx)
		return err
	})
	gate := &observeGate{observe: observe}
	g.Go(func() error {
		render := s.progress.Scheduler.Every(s.renderInterval, func() { gate.render(tracker.Snapshot) })
		defer render.Stop()
		select {
		case <-done:
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		var jobErr *progress.JobError
		cause := err
		if !errors.As(err, &jobErr) {
			jobErr = tracker.Fail("")
			cause = errors.Join(err, jobErr)
		}
		gate.final(jobErr.Snapshot)
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(cause, apperrors.ErrCodeCanceled, "Evaluation canceled.")
		}
		msg := "Evaluation failed."
		if jobErr.Reason != "" {
			msg = "Evaluation failed: " + jobErr.Reason
		} else if reason := gateway.ReasonOf(err); reason != "" {
			msg = "Evaluation failed: " + reason
		}
		return nil, apperrors.Wrap(cause, apperrors.ErrCodeJobFailed, msg)
	}

	gate.final(tracker.Finish())
	return report, nil
}

// observeGate delivers render ticks until the final snapshot. final waits for a tick in
// progress, so nothing stale is observed after it.
type observeGate struct {
	mu      sync.Mutex
	closed  bool
	observe ObserveFunc
}

func (g *observeGate) render(snapshot func() progress.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.observe(snapshot())
}

func (g *observeGate) final(snap progress.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.observe(snap)
}

// ReportActions executes auth-gated report actions.
type ReportActions struct {
	API ports.EvaluationAPI
	// Present shows a fetched report.
	Present func(ctx context.Context, report *model.Report) error
}

var _ ActionHandler = (*ReportActions)(nil)

// Handle fetches and presents the report named by action.
func (r *ReportActions) Handle(ctx context.Context, action domainauth.PendingAction) error {
	switch action.Kind {
	case domainauth.ActionViewReport:
		report, err := r.API.Report(ctx, action.ReportID)
		if err != nil {
			if gateway.IsStatus(err, http.StatusNotFound) {
				return apperrors.NotFoundf("Report %s not found.", action.ReportID)
			}
			return fmt.Errorf("fetch report %s: %w", action.ReportID, err)
		}
		if r.Present == nil {
			return nil
		}
		return r.Present(ctx, report)
	default:
		return fmt.Errorf("unsupported action %q", action.Kind)
	}
}
