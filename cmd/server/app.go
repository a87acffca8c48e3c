package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/events"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
	"github.com/phrazzld/taskmanager-api/internal/notify"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
	"github.com/phrazzld/taskmanager-api/internal/platform/sendgrid"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// application holds the shared dependencies of the server and owns their
// shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	userService service.UserService
	taskService service.TaskService

	jobQueue   *jobs.Queue
	workerPool *jobs.WorkerPool
}

// appDeps are the pieces newApplication would otherwise build from the
// database. Tests substitute in-memory stores.
type appDeps struct {
	userStore  store.UserStore
	taskStore  store.TaskStore
	transactor store.Transactor
	jwtService auth.JWTService
	mailer     notify.Mailer
}

// newApplication wires PostgreSQL stores, JWT auth and SendGrid delivery.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	return buildApplication(cfg, logger, appDeps{
		userStore:  postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger),
		taskStore:  postgres.NewPostgresTaskStore(db, logger),
		transactor: store.NewDBTransactor(db),
		jwtService: jwtService,
		mailer:     sendgrid.NewMailer(cfg.Email, logger),
	}), nil
}

// buildApplication assembles services, events and the email worker pool.
// The pool is started here and stopped by shutdown.
func buildApplication(cfg *config.Config, logger *slog.Logger, deps appDeps) *application {
	app := &application{
		config: cfg,
		logger: logger,
	}

	app.jobQueue = jobs.NewQueue(cfg.Jobs.QueueSize, logger)
	poolCfg := jobs.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.Jobs.WorkerCount
	app.workerPool = jobs.NewWorkerPool(app.jobQueue, poolCfg, logger)
	app.workerPool.SetErrorHandler(func(job jobs.Job, err error) {
		logger.Warn("background job failed",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", redact.Error(err)))
	})
	app.workerPool.Start()

	notifier := notify.NewEmailNotifier(app.jobQueue, deps.mailer, cfg.Email, logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(notify.NewEventHandler(notifier))

	app.userService = service.NewUserService(
		deps.userStore,
		deps.transactor,
		deps.jwtService,
		auth.NewBcryptVerifier(),
		emitter,
		logger,
	)
	app.taskService = service.NewTaskService(deps.taskStore, logger)

	logger.Info("application initialized",
		slog.Int("job_workers", poolCfg.WorkerCount),
		slog.Int("job_queue_size", cfg.Jobs.QueueSize))
	return app
}

// Run serves HTTP until ctx is canceled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// shutdown stops accepting jobs and lets queued emails drain until ctx expires.
func (app *application) shutdown(ctx context.Context) {
	app.jobQueue.Close()
	if err := app.workerPool.Stop(ctx); err != nil {
		app.logger.Warn("worker pool did not drain before shutdown deadline",
			slog.String("error", err.Error()))
	}
	app.logger.Info("application shutdown completed")
}

func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}
