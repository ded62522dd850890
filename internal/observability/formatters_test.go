package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/recipe-ingest/internal/pipeline"
	"github.com/jonathan/recipe-ingest/internal/reclassify"
	"github.com/jonathan/recipe-ingest/internal/report"
	"github.com/jonathan/recipe-ingest/internal/sources"
	"github.com/jonathan/recipe-ingest/internal/types"
)

func TestPrintIngestionStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	start := time.Now()
	p.PrintIngestionStats(&pipeline.Stats{
		RunID:     uuid.New(),
		Source:    "themealdb",
		State:     pipeline.StateDone,
		Fetched:   10,
		Processed: 9,
		Saved:     8,
		Skipped:   1,
		Errored:   1,
		StartedAt: start,
		EndedAt:   start.Add(2 * time.Second),
	})
	output := buf.String()

	assert.Contains(t, output, "INGESTION COMPLETE")
	assert.Contains(t, output, "themealdb")
	assert.Contains(t, output, "Saved:         8")
	assert.Contains(t, output, "Success rate:  80.0%")
	assert.Contains(t, output, "2.0s")
}

func TestPrintIngestionStats_DryRunAndFatal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestionStats(&pipeline.Stats{Source: "themealdb", DryRun: true, State: pipeline.StateDone})
	assert.Contains(t, buf.String(), "INGESTION COMPLETE (DRY RUN)")

	buf.Reset()
	p.PrintIngestionStats(&pipeline.Stats{Source: "themealdb", State: pipeline.StateFatalError})
	assert.Contains(t, buf.String(), "INGESTION FAILED")
}

func TestPrintIngestionStats_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintIngestionStats(nil)
	assert.Empty(t, buf.String())
}

func TestPrintTotals(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTotals(&pipeline.Totals{Sources: 2, SourcesCompleted: 1, Fetched: 50, Saved: 25, Errored: 2})
	output := buf.String()

	assert.Contains(t, output, "Sources completed: 1/2")
	assert.Contains(t, output, "Success rate:      50.0%")
}

func TestPrintRecipePreview(t *testing.T) {
	var buf bytes.Buffer
	r := &types.Recipe{
		Name:         "Veggie Stir Fry",
		CuisineType:  types.StringPtr("Chinese"),
		MealType:     "dinner",
		Difficulty:   2,
		DietaryFlags: types.DietaryFlags{Vegetarian: true, Vegan: true, GlutenFree: true},
		Ingredients:  []types.Ingredient{{Name: "broccoli", Amount: "1 head"}},
	}

	NewPrinter(&buf).PrintRecipePreview(1, r)
	output := buf.String()

	assert.Contains(t, output, "1. Veggie Stir Fry")
	assert.Contains(t, output, "Vegetarian, Vegan, Gluten-free")
	assert.Contains(t, output, "Low-carb/keto: not determined")
}

func TestPrintFixReport(t *testing.T) {
	var buf bytes.Buffer
	rep := &reclassify.FixReport{
		DryRun:            true,
		Analyzed:          4,
		Changed:           1,
		KeywordSetVersion: "2",
		Kinds: []reclassify.Kind{
			{Restriction: "vegetarian", Fixed: 1, Examples: []reclassify.Example{{Name: "Mushroom Risotto", Old: true, New: false}}},
			{Restriction: "vegan"},
		},
	}

	NewPrinter(&buf).PrintFixReport(rep)
	output := buf.String()

	assert.Contains(t, output, "DRY RUN, NOTHING SAVED")
	assert.Contains(t, output, "Already correct:         75.0%")
	assert.Contains(t, output, "Vegetarian: 1 fixed")
	assert.Contains(t, output, "Mushroom Risotto: yes -> no")
	assert.NotContains(t, output, "Vegan:")
}

func TestPrintSummary(t *testing.T) {
	sum := &report.Summary{
		Total:   2,
		Sources: []report.Count{{Label: "themealdb", Count: 2}},
		Dietary: []report.DietaryCount{
			{Label: "vegetarian", Count: 1, Percent: 50, Example: "Tofu Bowl"},
			{Label: "gluten_free", Count: 2, Percent: 100},
		},
		Undetermined:    []string{types.FlagLowCarb, types.FlagKeto},
		Cuisines:        []report.Count{{Label: "Japanese", Count: 2}},
		AvgPrepMinutes:  12.5,
		VeganGlutenFree: 1,
		Samples: []*types.Recipe{{
			Name:           "Tofu Bowl",
			ExternalSource: "themealdb",
			Ingredients: []types.Ingredient{
				{Name: "tofu", Amount: "200g"}, {Name: "rice", Amount: "1 cup"},
				{Name: "soy sauce", Amount: "2 tbsp"}, {Name: "scallion", Amount: "1"},
			},
		}},
	}

	t.Run("basic", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintSummary(sum, false, false)
		output := buf.String()

		assert.Contains(t, output, "Total recipes: 2")
		assert.Contains(t, output, "Vegetarian: 1 (50.0%)")
		assert.Contains(t, output, "Low-carb: not determined")
		assert.Contains(t, output, "Keto: not determined")
		assert.NotContains(t, output, "Cuisines")
		assert.Contains(t, output, "SAMPLE RECIPES (showing 1 of 2)")
		assert.Contains(t, output, "200g tofu")
		assert.Contains(t, output, "... and 1 more")
	})

	t.Run("detailed with filters", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintSummary(sum, true, true)
		output := buf.String()

		assert.Contains(t, output, "Japanese: 2 recipes")
		assert.Contains(t, output, "Average prep time: 12.5 minutes")
		assert.Contains(t, output, "Example: Tofu Bowl")
		assert.Contains(t, output, "Vegan + gluten-free: 1 recipes")
	})
}

func TestPrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(&report.Summary{}, true, true)
	assert.Contains(t, buf.String(), "No recipes found")
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSources([]sources.Info{{
		Name:         "themealdb",
		Description:  "TheMealDB - Free recipe database with international cuisines",
		DefaultLimit: 100,
	}})
	output := buf.String()

	assert.Contains(t, output, "AVAILABLE SOURCES")
	assert.Contains(t, output, "API key required: no, default limit: 100")
}

func TestPrintBox_TruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	width := len([]rune(lines[0]))
	for _, line := range lines {
		assert.Equal(t, width, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}
