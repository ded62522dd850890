package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/observability"
	"github.com/jonathan/recipe-ingest/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show statistics about the stored recipes",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var (
	checkDetailed    bool
	checkSamples     int
	checkTestFilters bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkDetailed, "detailed", false, "Show cuisine, meal type, difficulty and timing breakdowns")
	checkCmd.Flags().IntVar(&checkSamples, "samples", 5, "Number of sample recipes to show")
	checkCmd.Flags().BoolVar(&checkTestFilters, "test-filters", false, "Show one example per dietary filter")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rs, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = rs.Close() }()

	sum, err := report.Build(ctx, rs, time.Now(), report.Options{Samples: checkSamples})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSummary(sum, checkDetailed, checkTestFilters)
	return nil
}
