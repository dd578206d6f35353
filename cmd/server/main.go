// Package main provides the main entry point for the EduTube backend server.
// It sets up the HTTP server, database connection, middleware, and API routes.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/database"
	"github.com/Vijayy-ai/EduTube/internal/handlers"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"
	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"
)

// Application encapsulates the wired server so it can be tested
type Application struct {
	db     *sql.DB
	server *http.Server
	logger *observability.Logger
}

// NewApplication wires services and the router into a runnable server
func NewApplication(cfg *config.Config, db *sql.DB, logger *observability.Logger) (*Application, error) {
	videoService := services.NewYouTubeService(cfg, logger)
	aiService := services.NewGeminiService(cfg, logger)
	transcriptService := services.NewTranscriptService(cfg, logger, videoService)
	courseService := services.NewCourseService(db, logger)

	quizService, err := services.NewQuizService(db, cfg, logger, aiService, transcriptService)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create quiz service")
	}

	router := handlers.NewRouter(cfg, db, logger, quizService, courseService)

	return &Application{
		db: db,
		server: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled
func (a *Application) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		return contextutils.WrapError(err, "server failed")
	}
}

// Shutdown gracefully stops the HTTP server and closes the database
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return contextutils.WrapError(err, "failed to shut down HTTP server")
	}
	if err := a.db.Close(); err != nil {
		return contextutils.WrapError(err, "failed to close database")
	}
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "edutube-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if shutdownable, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := shutdownable.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	logger.Info(ctx, "Starting EduTube backend service", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
	})

	// Initialize database with migrations
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithConfig(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to initialize database", err, nil)
		os.Exit(1)
	}

	app, err := NewApplication(cfg, db, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err, nil)
		os.Exit(1)
	}

	// Start application in a goroutine
	appErr := make(chan error, 1)
	go func() {
		if err := app.Run(ctx); err != nil {
			appErr <- err
		}
	}()

	// Wait for shutdown signal or application error
	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	case err := <-appErr:
		logger.Error(ctx, "Application failed", err, nil)
		os.Exit(1)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err, nil)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully", nil)
}
