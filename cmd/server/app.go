package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/config"
	"github.com/adlift/adlift-api/internal/events"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/platform/gemini"
	"github.com/adlift/adlift-api/internal/platform/postgres"
	"github.com/adlift/adlift-api/internal/ratelimit"
	"github.com/adlift/adlift-api/internal/service"
	"github.com/adlift/adlift-api/internal/service/auth"
	"github.com/adlift/adlift-api/internal/store"
	"github.com/adlift/adlift-api/internal/task"
)

// application holds the shared application dependencies so wiring happens in
// one place and cleanup can release everything on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	campaignStore store.CampaignStore
	jobStore      store.JobStore

	jwtService auth.JWTService
	generator  generation.Generator
	limiter    *ratelimit.Limiter

	userService       service.UserService
	campaignService   service.CampaignService
	generationService service.GenerationService

	eventEmitter *events.InMemoryEventEmitter
	registry     *task.TrackerRegistry
	taskRunner   *task.TaskRunner
}

// newApplication wires all application dependencies.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.campaignStore = postgres.NewPostgresCampaignStore(db, logger)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)

	app.generator, err = gemini.NewGeminiGenerator(
		ctx,
		logger.With("component", "llm_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized")

	app.limiter = ratelimit.NewLimiter(cfg.RateLimit)
	app.registry = task.NewTrackerRegistry()
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	trackerConfig := asyncop.Config{
		Timeout:          time.Duration(cfg.LLM.GenerationTimeoutSeconds) * time.Second,
		ProgressInterval: time.Second,
		Retry: asyncop.RetryPolicy{
			MaxAttempts: cfg.LLM.MaxAttempts,
			BaseDelay:   time.Duration(cfg.LLM.RetryBaseDelayMs) * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Jitter:      true,
		},
	}

	factory, err := task.NewGenerationTaskFactory(
		app.jobStore,
		app.generator,
		app.registry,
		asyncop.NewRealClock(),
		trackerConfig,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}
	factory.WithLimiter(app.limiter)

	app.taskRunner = task.NewTaskRunner(app.jobStore, factory, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	app.eventEmitter.RegisterHandler(
		task.NewJobEventHandler(factory, app.taskRunner.Queue(), logger))

	verifier := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)
	app.userService = service.NewUserService(app.userStore, db, verifier, verifier, logger)
	app.campaignService = service.NewCampaignService(app.campaignStore, db, logger)

	app.generationService, err = service.NewGenerationService(
		app.jobStore,
		app.campaignStore,
		db,
		app.eventEmitter,
		app.registry,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
