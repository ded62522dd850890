package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/metrics"
	"github.com/jonathan/recipe-ingest/internal/observability"
	"github.com/jonathan/recipe-ingest/internal/persist"
	"github.com/jonathan/recipe-ingest/internal/pipeline"
	"github.com/jonathan/recipe-ingest/internal/schemas"
	"github.com/jonathan/recipe-ingest/internal/sources/themealdb"
)

// maxPreviews is the number of dry-run recipes printed in full.
const maxPreviews = 5

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest recipes from an external source",
	Long: "Fetch recipes from a source, normalize them, classify dietary flags and store every record " +
		"that is not already present. With --dry-run nothing is written.",
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var (
	ingestSource     string
	ingestLimit      int
	ingestDryRun     bool
	ingestAllSources bool
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", themealdb.SourceName, "Source to ingest from")
	ingestCmd.Flags().IntVarP(&ingestLimit, "limit", "l", 0, "Maximum recipes to ingest (default from config)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Fetch and classify without saving")
	ingestCmd.Flags().BoolVar(&ingestAllSources, "all-sources", false, "Ingest from every registered source")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := observability.NewPrinter(cmd.OutOrStdout())

	limit := ingestLimit
	if limit <= 0 {
		limit = cfg.Ingest.DefaultLimit
		if ingestAllSources {
			limit = cfg.Ingest.AllSourcesLimit
		}
	}

	catalogCache, closeCache, err := openCatalogCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog cache: %w", err)
	}
	defer func() { _ = closeCache() }()

	reg, err := newRegistry(cfg, logger, catalogCache)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	opts := []pipeline.Option{
		pipeline.WithValidator(schemas.NewRecipeValidator()),
		pipeline.WithMetrics(recorder),
	}

	var saver pipeline.Saver
	if !ingestDryRun {
		rs, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() { _ = rs.Close() }()

		existing, err := rs.Count(ctx)
		if err != nil {
			return fmt.Errorf("store connectivity check failed: %w", err)
		}
		logger.Info().Int("existing_recipes", existing).Str("backend", cfg.Store.Backend).Msg("store ready")

		saver = persist.NewGateway(rs, logger)
		if rs.history != nil {
			opts = append(opts, pipeline.WithRunHistory(rs.history))
		}
	}

	names := []string{ingestSource}
	if ingestAllSources {
		names = reg.Names()
	}

	runs := make([]*pipeline.Orchestrator, 0, len(names))
	for _, name := range names {
		src, err := reg.Open(name)
		if err != nil {
			return err
		}
		runs = append(runs, pipeline.New(src, saver, logger, opts...))
	}

	runOpts := pipeline.Options{Limit: limit, DryRun: ingestDryRun}
	if ingestDryRun {
		runOpts.OnProgress = previewPrinter(out)
	}

	if ingestAllSources {
		totals, all := pipeline.RunAll(ctx, runs, runOpts)
		for _, stats := range all {
			out.PrintIngestionStats(stats)
		}
		out.PrintTotals(totals)
		exportMetrics(ctx, recorder)
		return nil
	}

	stats, runErr := runs[0].Run(ctx, runOpts)
	out.PrintIngestionStats(stats)
	exportMetrics(ctx, recorder)
	return runErr
}

// previewPrinter prints the first maxPreviews dry-run recipes.
func previewPrinter(out *observability.Printer) pipeline.ProgressCallback {
	shown := 0
	return func(e pipeline.ProgressEvent) {
		if e.Stage != "preview" || shown >= maxPreviews {
			return
		}
		shown++
		out.PrintRecipePreview(e.Index, e.Recipe)
	}
}

// exportMetrics writes and pushes metrics as configured. Failures are logged.
func exportMetrics(ctx context.Context, recorder *metrics.Recorder) {
	if path := cfg.Metrics.Textfile; path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("metrics not written")
		}
	}
	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if err := recorder.Push(ctx, url, serviceName); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("metrics not pushed")
		}
	}
}
