package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/target/rightname-go/config"
	"github.com/target/rightname-go/internal/adapters/api"
	"github.com/target/rightname-go/internal/adapters/browser"
	"github.com/target/rightname-go/internal/adapters/jobfeed"
	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
	"github.com/target/rightname-go/internal/progress"
	"github.com/target/rightname-go/internal/service"
)

// AppOptions groups the inputs for building an App.
type AppOptions struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Prompt is shown when an action needs a login.
	Prompt ports.AuthPrompt
	// Present shows reports fetched by resumed actions.
	Present func(ctx context.Context, report *model.Report) error
	// Out receives navigation targets that cannot be opened. Defaults to stderr.
	Out io.Writer
	// Open overrides the browser launcher.
	Open browser.OpenFunc
	// HTTPClient overrides the transport used for API calls.
	HTTPClient *http.Client
}

// App holds the wired client components.
type App struct {
	Config       *config.AppConfig
	Logger       *slog.Logger
	State        *StateBackend
	Gateway      *gateway.Client
	Session      *service.SessionService
	Pending      *service.PendingActions
	Bridge       *service.RedirectBridge
	Orchestrator *service.AuthOrchestrator
	Evaluations  *service.EvaluationService
	Reports      *service.ReportActions

	closeOnce sync.Once
}

// NewApp opens the durable state and wires every component. The session starts
// Unresolved; call Start to resolve it.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	state, err := OpenState(ctx, StateConfig{State: cfg.State, Redis: cfg.Redis, Logger: logger})
	if err != nil {
		return nil, err
	}

	app, err := wire(ctx, opts, state, logger)
	if err != nil {
		if closeErr := state.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close state: %w", closeErr))
		}
		return nil, err
	}
	logger.Debug("client initialised",
		"api", cfg.API.BaseURL,
		"auth_mode", cfg.Auth.Mode,
		"state", state.Location,
	)
	return app, nil
}

func wire(ctx context.Context, opts AppOptions, state *StateBackend, logger *slog.Logger) (*App, error) {
	cfg := opts.Config

	client, err := gateway.New(ctx, gateway.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.RequestTimeout,
		UserAgent: cfg.API.UserAgent,
		Store:     state.Store,
		Client:    opts.HTTPClient,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	auth, err := BuildAuth(ctx, AuthConfig{Auth: cfg.Auth, Gateway: client, Store: state.Store, Logger: logger})
	if err != nil {
		return nil, err
	}

	nav, err := browser.New(browser.Config{BaseURL: cfg.API.WebURL, Out: opts.Out, Open: opts.Open, Logger: logger})
	if err != nil {
		return nil, err
	}

	evalAPI := api.NewEvaluation(client)
	feed, err := jobfeed.New(evalAPI, jobfeed.Options{
		Interval: cfg.Progress.PollInterval,
		Exprs:    cfg.Progress.Exprs,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build progress feed: %w", err)
	}

	session := service.NewSessionService(service.SessionServiceOptions{
		API:         auth.API,
		Store:       state.Store,
		Credentials: client,
		Logger:      logger,
	})
	pending := service.NewPendingActions(state.Store, logger)
	bridge := service.NewRedirectBridge(service.RedirectBridgeOptions{
		Provider:    auth.Provider,
		API:         auth.API,
		Session:     session,
		Store:       state.Store,
		Navigator:   nav,
		Callback:    cfg.Auth.CallbackURL(),
		ExchangeTTL: cfg.State.ExchangeTTL,
		Logger:      logger,
	})
	reports := &service.ReportActions{API: evalAPI, Present: opts.Present}
	orchestrator := service.NewAuthOrchestrator(service.AuthOrchestratorOptions{
		Session: session,
		Pending: pending,
		Bridge:  bridge,
		API:     auth.API,
		Prompt:  opts.Prompt,
		Handler: reports,
		Logger:  logger,
	})
	evaluations := service.NewEvaluationService(service.EvaluationServiceOptions{
		API:  evalAPI,
		Feed: feed,
		Progress: progress.Options{
			SmoothInterval: cfg.Progress.SmoothInterval,
			SmoothStep:     cfg.Progress.SmoothStep,
			ETAInterval:    cfg.Progress.ETAInterval,
			InitialETA:     cfg.Progress.InitialETA,
		},
		PreferAsync: cfg.API.PreferAsync,
		Logger:      logger,
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		State:        state,
		Gateway:      client,
		Session:      session,
		Pending:      pending,
		Bridge:       bridge,
		Orchestrator: orchestrator,
		Evaluations:  evaluations,
		Reports:      reports,
	}, nil
}

// Start resolves the session. A pending action left by an earlier run is resumed when
// the session resolves to Authenticated.
func (a *App) Start(ctx context.Context) {
	state := a.Session.Start(ctx)
	a.Logger.Debug("session resolved", "state", state.String())
}

// Close detaches the orchestrator and releases the state backend.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.Orchestrator.Close()
		err = a.State.Close()
	})
	return err
}
