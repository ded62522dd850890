package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recipe-ingest/internal/metrics"
	"github.com/jonathan/recipe-ingest/internal/observability"
	"github.com/jonathan/recipe-ingest/internal/reclassify"
)

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify",
	Short: "Re-run dietary classification over stored recipes",
	Long: "Re-analyze stored recipes with the current keyword lists and correct dietary flags that " +
		"no longer match the ingredients. Use --dry-run to preview the changes.",
	Args: cobra.NoArgs,
	RunE: runReclassify,
}

var (
	reclassifyRecipeID       int64
	reclassifyRestriction    string
	reclassifyVeganOnly      bool
	reclassifyVegetarianOnly bool
	reclassifyDryRun         bool
)

func init() {
	reclassifyCmd.Flags().Int64Var(&reclassifyRecipeID, "recipe-id", 0, "Reclassify a single recipe by ID")
	reclassifyCmd.Flags().StringVar(&reclassifyRestriction, "restriction", "", "Only check recipes currently flagged with this restriction")
	reclassifyCmd.Flags().BoolVar(&reclassifyVeganOnly, "vegan-only", false, "Only check recipes currently flagged vegan")
	reclassifyCmd.Flags().BoolVar(&reclassifyVegetarianOnly, "vegetarian-only", false, "Only check recipes currently flagged vegetarian")
	reclassifyCmd.Flags().BoolVar(&reclassifyDryRun, "dry-run", false, "Preview changes without saving")

	reclassifyCmd.MarkFlagsMutuallyExclusive("restriction", "vegan-only", "vegetarian-only")

	rootCmd.AddCommand(reclassifyCmd)
}

func runReclassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	restriction := reclassifyRestriction
	switch {
	case reclassifyVeganOnly:
		restriction = "vegan"
	case reclassifyVegetarianOnly:
		restriction = "vegetarian"
	}

	rs, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = rs.Close() }()

	recorder := metrics.NewRecorder()
	tool := reclassify.New(rs, logger, reclassify.WithMetrics(recorder))

	report, err := tool.Run(ctx, reclassify.Options{
		RecipeID:    reclassifyRecipeID,
		Restriction: restriction,
		DryRun:      reclassifyDryRun,
	})
	if report != nil {
		observability.NewPrinter(cmd.OutOrStdout()).PrintFixReport(report)
	}
	if err != nil {
		return fmt.Errorf("reclassification failed: %w", err)
	}

	if report.DryRun && report.Changed > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "To apply these fixes, run without --dry-run")
	}

	exportMetrics(ctx, recorder)
	return nil
}
