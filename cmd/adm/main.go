// Package main provides the main entry point for the EduTube admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Vijayy-ai/EduTube/cmd/adm/commands"
	"github.com/Vijayy-ai/EduTube/internal/config"
	"github.com/Vijayy-ai/EduTube/internal/database"
	"github.com/Vijayy-ai/EduTube/internal/observability"
	"github.com/Vijayy-ai/EduTube/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for the admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "edutube-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// Initialize database connection (no migrations; `adm db migrate` does that explicitly)
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_url": cfg.Database.URL})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Initialize services
	videoService := services.NewYouTubeService(cfg, logger)
	aiService := services.NewGeminiService(cfg, logger)
	transcriptService := services.NewTranscriptService(cfg, logger, videoService)
	courseService := services.NewCourseService(db, logger)
	quizService, err := services.NewQuizService(db, cfg, logger, aiService, transcriptService)
	if err != nil {
		logger.Error(ctx, "Failed to create quiz service", err, nil)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "EduTube Administration Tool",
		Long: `EduTube Administration Tool

A CLI tool for administering the EduTube backend.
Provides commands for database operations and quiz management.`,

		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.DatabaseCommands(dbManager, logger, cfg.Database.URL))
	rootCmd.AddCommand(commands.QuizCommands(quizService, courseService, logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
