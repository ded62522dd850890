package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/config"
	"github.com/jonathan/recipe-ingest/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Apply the embedded schema migrations to the PostgreSQL database at DATABASE_URL.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate requires the postgres backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if err := db.RunMigrations(cfg.Store.DatabaseURL); err != nil {
		return err
	}

	logger.Info().Msg("migrations applied")
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}
