// Package observability provides logging setup and the boxed summaries the
// CLI prints to stdout.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/recipe-ingest/internal/pipeline"
	"github.com/jonathan/recipe-ingest/internal/reclassify"
	"github.com/jonathan/recipe-ingest/internal/report"
	"github.com/jonathan/recipe-ingest/internal/sources"
	"github.com/jonathan/recipe-ingest/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxIngredientsShown per sample recipe
	maxIngredientsShown = 3
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func mark(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// PrintIngestionStats outputs the summary of one ingestion run.
func (p *Printer) PrintIngestionStats(stats *pipeline.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:        %s\n", stats.Source))
	sb.WriteString(fmt.Sprintf("Run:           %s\n", stats.RunID))
	sb.WriteString(fmt.Sprintf("State:         %s\n", stats.State))
	sb.WriteString(fmt.Sprintf("Duration:      %.1fs\n", stats.Duration().Seconds()))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Fetched:       %d\n", stats.Fetched))
	sb.WriteString(fmt.Sprintf("Processed:     %d\n", stats.Processed))
	sb.WriteString(fmt.Sprintf("Saved:         %d\n", stats.Saved))
	sb.WriteString(fmt.Sprintf("Skipped:       %d\n", stats.Skipped))
	sb.WriteString(fmt.Sprintf("Errors:        %d\n", stats.Errored))
	sb.WriteString(fmt.Sprintf("Success rate:  %.1f%%", stats.SuccessRate()*100))

	title := "INGESTION COMPLETE"
	if stats.DryRun {
		title += " (DRY RUN)"
	}
	if stats.State == pipeline.StateFatalError {
		title = "INGESTION FAILED"
	}
	p.printBox(title, sb.String())
}

// PrintTotals outputs the aggregate of an all-sources run.
func (p *Printer) PrintTotals(totals *pipeline.Totals) {
	if totals == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sources completed: %d/%d\n", totals.SourcesCompleted, totals.Sources))
	sb.WriteString(fmt.Sprintf("Total fetched:     %d\n", totals.Fetched))
	sb.WriteString(fmt.Sprintf("Total saved:       %d\n", totals.Saved))
	sb.WriteString(fmt.Sprintf("Total errors:      %d\n", totals.Errored))
	sb.WriteString(fmt.Sprintf("Success rate:      %.1f%%", totals.SuccessRate()*100))

	p.printBox("ALL SOURCES COMPLETE", sb.String())
}

// PrintRecipePreview outputs one recipe a dry run would have saved.
func (p *Printer) PrintRecipePreview(index int, r *types.Recipe) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cuisine:     %s\n", orUnknown(types.Deref(r.CuisineType))))
	sb.WriteString(fmt.Sprintf("Meal type:   %s\n", r.MealType))
	sb.WriteString(fmt.Sprintf("Time:        %dmin prep + %dmin cook\n", r.PrepTimeMinutes, r.CookTimeMinutes))
	sb.WriteString(fmt.Sprintf("Difficulty:  %d/5\n", r.Difficulty))
	sb.WriteString(fmt.Sprintf("Ingredients: %d\n", len(r.Ingredients)))
	sb.WriteString(fmt.Sprintf("Dietary:     %s\n", dietaryLine(r.DietaryFlags)))
	sb.WriteString("Low-carb/keto: not determined")

	p.printBox(fmt.Sprintf("%d. %s", index, r.Name), sb.String())
}

// PrintFixReport outputs the result of a reclassification pass.
func (p *Printer) PrintFixReport(rep *reclassify.FixReport) {
	if rep == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recipes analyzed:        %d\n", rep.Analyzed))
	sb.WriteString(fmt.Sprintf("Recipes needing changes: %d\n", rep.Changed))
	sb.WriteString(fmt.Sprintf("Update errors:           %d\n", rep.Errors))
	sb.WriteString(fmt.Sprintf("Already correct:         %.1f%%\n", rep.AlreadyCorrectRate()*100))
	sb.WriteString(fmt.Sprintf("Keyword set version:     %s", rep.KeywordSetVersion))

	if rep.Changed > 0 {
		sb.WriteString("\n\nChanges by restriction:")
		for _, k := range rep.Kinds {
			if k.Fixed == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n  • %s: %d fixed", displayLabel(k.Restriction), k.Fixed))
			for _, ex := range k.Examples {
				sb.WriteString(fmt.Sprintf("\n    - %s: %s -> %s", ex.Name, mark(ex.Old), mark(ex.New)))
			}
		}
	}

	title := "DIETARY FLAG FIX - CHANGES APPLIED"
	if rep.DryRun {
		title = "DIETARY FLAG FIX - DRY RUN, NOTHING SAVED"
	}
	p.printBox(title, sb.String())
}

// PrintSummary outputs the catalog report. detailed adds the cuisine,
// meal type, difficulty and timing sections; filters adds per-flag examples.
func (p *Printer) PrintSummary(sum *report.Summary, detailed, filters bool) {
	if sum == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total recipes: %d\n", sum.Total))
	if sum.Total == 0 {
		sb.WriteString("No recipes found. Run: recipe_ingest ingest")
		p.printBox("RECIPE DATABASE STATISTICS", sb.String())
		return
	}

	sb.WriteString("\nSources:\n")
	for _, c := range sum.Sources {
		sb.WriteString(fmt.Sprintf("  • %s: %d recipes\n", c.Label, c.Count))
	}

	sb.WriteString("\nDietary restrictions:\n")
	for _, d := range sum.Dietary {
		sb.WriteString(fmt.Sprintf("  • %s: %d (%.1f%%)\n", displayLabel(d.Label), d.Count, d.Percent))
	}
	for _, flag := range sum.Undetermined {
		sb.WriteString(fmt.Sprintf("  • %s: not determined\n", displayLabel(types.FlagLabel(flag))))
	}

	if detailed {
		sb.WriteString("\nCuisines (top 10):\n")
		for _, c := range sum.Cuisines {
			sb.WriteString(fmt.Sprintf("  • %s: %d recipes\n", c.Label, c.Count))
		}
		sb.WriteString("\nMeal types:\n")
		for _, c := range sum.MealTypes {
			sb.WriteString(fmt.Sprintf("  • %s: %d recipes\n", c.Label, c.Count))
		}
		sb.WriteString("\nDifficulty:\n")
		for _, c := range sum.Difficulty {
			sb.WriteString(fmt.Sprintf("  • %s: %d recipes\n", c.Label, c.Count))
		}
		sb.WriteString(fmt.Sprintf("\nAverage prep time: %.1f minutes\n", sum.AvgPrepMinutes))
		sb.WriteString(fmt.Sprintf("Average cook time: %.1f minutes\n", sum.AvgCookMinutes))
		sb.WriteString(fmt.Sprintf("Recent additions (24h): %d\n", sum.RecentAdditions))
	}

	if filters {
		sb.WriteString("\nFilter check:\n")
		for _, d := range sum.Dietary {
			sb.WriteString(fmt.Sprintf("  • %s: %d recipes\n", displayLabel(d.Label), d.Count))
			if d.Example != "" {
				sb.WriteString(fmt.Sprintf("    Example: %s\n", d.Example))
			}
		}
		sb.WriteString(fmt.Sprintf("  • Vegan + gluten-free: %d recipes\n", sum.VeganGlutenFree))
	}

	p.printBox("RECIPE DATABASE STATISTICS", strings.TrimSuffix(sb.String(), "\n"))

	if len(sum.Samples) > 0 {
		p.printSamples(sum)
	}
}

func (p *Printer) printSamples(sum *report.Summary) {
	var sb strings.Builder
	for i, r := range sum.Samples {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Name))
		sb.WriteString(fmt.Sprintf("   Cuisine: %s, type: %s, difficulty %d/5\n",
			orUnknown(types.Deref(r.CuisineType)), orUnknown(r.MealType), max(r.Difficulty, 1)))
		sb.WriteString(fmt.Sprintf("   Time: %dmin prep + %dmin cook\n", r.PrepTimeMinutes, r.CookTimeMinutes))
		sb.WriteString(fmt.Sprintf("   Dietary: %s\n", dietaryLine(r.DietaryFlags)))
		sb.WriteString(fmt.Sprintf("   Source: %s\n", orUnknown(r.ExternalSource)))
		if n := len(r.Ingredients); n > 0 {
			sb.WriteString(fmt.Sprintf("   Ingredients: %d items\n", n))
			for _, ing := range r.Ingredients[:min(n, maxIngredientsShown)] {
				sb.WriteString(fmt.Sprintf("     • %s\n", strings.TrimSpace(ing.Amount+" "+ing.Name)))
			}
			if n > maxIngredientsShown {
				sb.WriteString(fmt.Sprintf("     ... and %d more\n", n-maxIngredientsShown))
			}
		}
	}

	title := fmt.Sprintf("SAMPLE RECIPES (showing %d of %d)", len(sum.Samples), sum.Total)
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSources outputs the registered sources.
func (p *Printer) PrintSources(infos []sources.Info) {
	var sb strings.Builder
	for i, info := range infos {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s\n", info.Name))
		sb.WriteString(fmt.Sprintf("  %s\n", info.Description))
		sb.WriteString(fmt.Sprintf("  API key required: %s, default limit: %d\n", mark(info.APIKeyRequired), info.DefaultLimit))
	}
	if len(infos) == 0 {
		sb.WriteString("No sources registered")
	}

	p.printBox("AVAILABLE SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

func dietaryLine(f types.DietaryFlags) string {
	labels := f.Labels()
	if len(labels) == 0 {
		return "none"
	}
	shown := make([]string, len(labels))
	for i, l := range labels {
		shown[i] = displayLabel(l)
	}
	return strings.Join(shown, ", ")
}

// displayLabel turns "gluten_free" into "Gluten-free".
func displayLabel(label string) string {
	if label == "" {
		return label
	}
	s := strings.ReplaceAll(label, "_", "-")
	return strings.ToUpper(s[:1]) + s[1:]
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
