// Package commands contains the subcommands of the adm CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/Vijayy-ai/EduTube/internal/database"
	"github.com/Vijayy-ai/EduTube/internal/observability"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the db command group
func DatabaseCommands(dbManager *database.Manager, logger *observability.Logger, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database operations",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := dbManager.RunMigrations(databaseURL); err != nil {
				logger.Error(ctx, "Migration failed", err, nil)
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and re-apply migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := dbManager.ResetDB(databaseURL); err != nil {
				logger.Error(ctx, "Database reset failed", err, nil)
				return err
			}
			fmt.Println("Database reset.")
			return nil
		},
	}

	dbCmd.AddCommand(migrateCmd)
	dbCmd.AddCommand(resetCmd)
	return dbCmd
}
