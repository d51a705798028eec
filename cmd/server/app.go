package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/gemini"
	"github.com/phrazzld/studykit/internal/platform/memory"
	"github.com/phrazzld/studykit/internal/platform/postgres"
	"github.com/phrazzld/studykit/internal/platform/redis"
	"github.com/phrazzld/studykit/internal/redact"
	"github.com/phrazzld/studykit/internal/seed"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/phrazzld/studykit/internal/store"
	"github.com/phrazzld/studykit/internal/synthesis"
	"github.com/phrazzld/studykit/internal/task"
)

// application holds the shared dependencies so they can be shut down together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	classes  store.ClassStore
	progress store.ProgressStore

	study    *service.StudyService
	emitter  *events.InMemoryEventEmitter
	runner   *task.Runner
	notifier *redis.Notifier
}

// newSynthesizer builds the Gemini endpoint, the retrying generation client
// and the synthesizer on top of it.
func newSynthesizer(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*synthesis.Synthesizer, error) {
	endpoint, err := gemini.NewEndpoint(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini endpoint: %w", err)
	}
	client, err := generation.NewClient(endpoint, log,
		generation.WithMaxAttempts(cfg.MaxAttempts),
		generation.WithInitialBackoff(cfg.InitialBackoff))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	synth, err := synthesis.New(client, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize synthesizer: %w", err)
	}
	log.Info("LLM synthesizer initialized", "model", cfg.ModelName, "max_attempts", cfg.MaxAttempts)
	return synth, nil
}

// newApplication wires stores, the event emitter, the task runner and the
// study service. Stores are Postgres when a database URL is configured and
// in-memory otherwise.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	synth service.Synthesizer,
) (*application, error) {
	app := &application{config: cfg, logger: log}

	if err := app.setupStores(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.runner = task.NewRunner(task.RunnerConfigFrom(cfg.Task), log)
	app.runner.SetErrorHandler(func(t task.Task, err error) {
		log.Error("background task failed",
			"task_id", t.ID().String(),
			"task_type", t.Type(),
			"error", redact.Error(err))
	})

	app.emitter = events.NewInMemoryEventEmitter(log)

	study, err := service.NewStudyService(app.classes, app.progress, synth, log,
		service.WithAutoSummarize(cfg.LLM.AutoSummarize),
		service.WithEventEmitter(app.emitter))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}
	app.study = study

	app.emitter.RegisterHandler(task.NewSummaryEventHandler(study, app.runner, log))

	if cfg.Redis.Addr != "" {
		app.notifier, err = redis.NewNotifier(ctx, cfg.Redis, log)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.emitter.RegisterHandler(app.notifier)
		log.Info("redis event notifications enabled", "channel", cfg.Redis.Channel)
	}

	log.Info("application initialized")
	return app, nil
}

func (app *application) setupStores(ctx context.Context) error {
	if app.config.Database.URL == "" {
		mem := memory.New()
		app.classes, app.progress = mem, mem
		app.logger.Info("using in-memory store")
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %s", redact.Error(err))
	}
	app.db = db
	if err := postgres.Migrate(ctx, db, app.logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	app.classes = postgres.NewClassStore(db, app.logger)
	app.progress = postgres.NewProgressStore(db, app.logger)
	app.logger.Info("using postgres store")
	return nil
}

// applySeed loads the configured seed file, if any, through the study service.
func (app *application) applySeed(ctx context.Context) error {
	if app.config.Seed.Path == "" {
		return nil
	}
	f, err := seed.Load(app.config.Seed.Path)
	if err != nil {
		return err
	}
	if _, err := seed.Apply(ctx, app.study, f, app.logger); err != nil {
		return fmt.Errorf("failed to apply seed: %w", err)
	}
	return nil
}

// cleanup releases every resource the application holds. It is safe to call
// on a partially initialized application.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.notifier != nil {
		if err := app.notifier.Close(); err != nil {
			app.logger.Error("error closing redis notifier", "error", redact.Error(err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", redact.Error(err))
		}
	}
	app.logger.Info("application shutdown completed")
}
