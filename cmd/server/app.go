package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/platform/postgres"
	"github.com/taskforge-app/taskforge-api/internal/platform/storage"
	"github.com/taskforge-app/taskforge-api/internal/service"
	"github.com/taskforge-app/taskforge-api/internal/service/auth"
	"github.com/taskforge-app/taskforge-api/internal/service/sweeper"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	fileStore        storage.FileStore
	taskService      service.TaskService

	// Background work
	sweeper *sweeper.Sweeper

	// Set when the local storage backend is active; the router serves this
	// directory under the public path.
	uploadsDir string
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
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

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger, auth.NewBcryptHasher(bcrypt.DefaultCost))
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.fileStore, err = setupFileStore(ctx, cfg.Storage, logger, app)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	logger.Info("File storage initialized", "backend", cfg.Storage.Backend)

	app.taskService = service.NewTaskService(app.taskStore, app.fileStore, logger)

	app.sweeper = sweeper.New(app.taskStore, cfg.Sweeper, logger)
	app.sweeper.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupFileStore builds the attachment backend selected by configuration.
func setupFileStore(
	ctx context.Context,
	cfg config.StorageConfig,
	logger *slog.Logger,
	app *application,
) (storage.FileStore, error) {
	switch cfg.Backend {
	case "local":
		localStore, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicPath, logger)
		if err != nil {
			return nil, err
		}
		app.uploadsDir = localStore.Dir()
		return localStore, nil
	case "s3":
		return storage.NewS3Store(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
