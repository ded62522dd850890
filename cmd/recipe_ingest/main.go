// Package main provides the entry point for the recipe ingestion CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/config"
	"github.com/jonathan/recipe-ingest/internal/observability"
)

const serviceName = "recipe_ingest"

var rootCmd = &cobra.Command{
	Use:   "recipe_ingest",
	Short: "Recipe ingestion and dietary classification",
	Long: "recipe_ingest pulls recipes from external catalogs, normalizes them, infers dietary flags " +
		"from ingredient names and stores them once per source record.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	verbose    bool

	// set by setup before any command runs
	cfg    *config.Config
	logger zerolog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		loaded.LogLevel = "debug"
	}

	l, err := observability.InitLogger(serviceName, loaded.Env, loaded.LogLevel)
	if err != nil {
		return err
	}

	cfg, logger = loaded, l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
