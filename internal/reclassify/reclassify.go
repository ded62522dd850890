// Package reclassify re-runs the dietary classifier over stored recipes and
// corrects flags that no longer match their ingredients.
package reclassify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/recipe-ingest/internal/dietary"
	"github.com/jonathan/recipe-ingest/internal/metrics"
	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// MaxExamples caps the examples kept per restriction kind.
const MaxExamples = 3

// ErrUnknownRestriction is returned for a restriction filter that does not
// name a determinable flag.
var ErrUnknownRestriction = errors.New("unknown restriction")

// Restrictions lists the accepted restriction filters in report order.
var Restrictions = []string{"vegetarian", "vegan", "gluten_free", "dairy_free", "nut_free", "paleo"}

// Options selects the recipes to analyze. RecipeID wins over Restriction.
type Options struct {
	RecipeID    int64
	Restriction string
	DryRun      bool
}

// Example is one corrected recipe shown in a report.
type Example struct {
	Name string `json:"name"`
	Old  bool   `json:"old"`
	New  bool   `json:"new"`
}

// Kind summarizes the corrections of one restriction.
type Kind struct {
	Restriction string    `json:"restriction"`
	Fixed       int       `json:"fixed"`
	Examples    []Example `json:"examples"`
}

// FixReport is the outcome of one reclassification pass.
type FixReport struct {
	DryRun            bool   `json:"dry_run"`
	Analyzed          int    `json:"analyzed"`
	Changed           int    `json:"changed"`
	Errors            int    `json:"errors"`
	KeywordSetVersion string `json:"keyword_set_version"`
	Kinds             []Kind `json:"kinds"`
}

// AlreadyCorrectRate is the share of analyzed recipes that needed no change.
func (r *FixReport) AlreadyCorrectRate() float64 {
	return float64(r.Analyzed-r.Changed) / float64(max(r.Analyzed, 1))
}

// Change is a single flag that differs from the stored value.
type Change struct {
	Flag string
	Old  bool
	New  bool
}

// Diff compares stored flags with a fresh classification over every
// determinable flag. Low-carb and keto carry no information and are skipped.
func Diff(stored, fresh types.DietaryFlags) []Change {
	var changes []Change
	for _, flag := range types.DeterminedFlags {
		oldV, _ := stored.Get(flag)
		newV, _ := fresh.Get(flag)
		if oldV != newV {
			changes = append(changes, Change{Flag: flag, Old: oldV, New: newV})
		}
	}
	return changes
}

// Tool reclassifies stored recipes.
type Tool struct {
	store   store.Store
	metrics *metrics.Recorder
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a Tool.
type Option func(*Tool)

// WithMetrics records applied corrections.
func WithMetrics(r *metrics.Recorder) Option {
	return func(t *Tool) { t.metrics = r }
}

// WithClock replaces time.Now for updated_at.
func WithClock(now func() time.Time) Option {
	return func(t *Tool) { t.now = now }
}

// New creates a reclassification tool over a store.
func New(s store.Store, logger zerolog.Logger, opts ...Option) *Tool {
	t := &Tool{store: s, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run analyzes the selected recipes and, unless DryRun is set, writes the
// corrected flags. A failed update is counted and the scan continues.
func (t *Tool) Run(ctx context.Context, opts Options) (*FixReport, error) {
	filter := store.Filter{RecipeID: opts.RecipeID}
	if opts.RecipeID == 0 && opts.Restriction != "" {
		flag, err := restrictionFlag(opts.Restriction)
		if err != nil {
			return nil, err
		}
		filter.Flag = flag
	}

	recipes, err := t.store.QueryWithIngredients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	analyzed := len(recipes)
	if opts.RecipeID != 0 && len(recipes) == 0 {
		exists, err := t.exists(ctx, opts.RecipeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("recipe %d: %w", opts.RecipeID, store.ErrNotFound)
		}
		// stored without ingredients: nothing to classify
		t.logger.Warn().Int64("id", opts.RecipeID).Msg("recipe has no ingredients, skipping")
		analyzed = 1
	}

	report := &FixReport{
		DryRun:            opts.DryRun,
		Analyzed:          analyzed,
		KeywordSetVersion: dietary.KeywordSetVersion,
		Kinds:             make([]Kind, len(Restrictions)),
	}
	for i, r := range Restrictions {
		report.Kinds[i] = Kind{Restriction: r, Examples: []Example{}}
	}

	t.logger.Info().
		Int("recipes", len(recipes)).
		Bool("dry_run", opts.DryRun).
		Str("keyword_set_version", dietary.KeywordSetVersion).
		Msg("starting dietary flag analysis")

	for i, recipe := range recipes {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reclassification canceled after %d of %d recipes: %w", i, len(recipes), err)
		}

		result := dietary.Explain(recipe.Ingredients)
		changes := Diff(recipe.DietaryFlags, result.Flags)
		if len(changes) == 0 {
			continue
		}

		t.logChanges(recipe, result, changes)

		if !opts.DryRun {
			flags := recipe.DietaryFlags
			for _, c := range changes {
				flags.Set(c.Flag, c.New)
			}
			if err := t.store.UpdateFlags(ctx, recipe.ID, flags, t.now()); err != nil {
				report.Errors++
				t.logger.Error().Err(err).Int64("id", recipe.ID).Msg("failed to update recipe flags")
				continue
			}
			t.logger.Info().Int64("id", recipe.ID).Msg("updated recipe flags")
		}

		report.Changed++
		report.record(recipe.Name, changes)
	}

	if t.metrics != nil && !opts.DryRun {
		fixed := make(map[string]int)
		for _, k := range report.Kinds {
			if k.Fixed > 0 {
				fixed[types.FlagName(k.Restriction)] = k.Fixed
			}
		}
		t.metrics.ObserveReclassification(report.Analyzed, report.Errors, fixed)
	}

	return report, nil
}

func (r *FixReport) record(name string, changes []Change) {
	for _, c := range changes {
		label := types.FlagLabel(c.Flag)
		for i := range r.Kinds {
			k := &r.Kinds[i]
			if k.Restriction != label {
				continue
			}
			k.Fixed++
			if len(k.Examples) < MaxExamples {
				k.Examples = append(k.Examples, Example{Name: name, Old: c.Old, New: c.New})
			}
		}
	}
}

func (t *Tool) logChanges(recipe *types.Recipe, result dietary.Result, changes []Change) {
	event := t.logger.Info().
		Int64("id", recipe.ID).
		Str("name", recipe.Name).
		Str("ingredients", ingredientPreview(recipe.Ingredients))
	for _, cat := range dietary.Categories {
		if kws := result.Matches[cat]; len(kws) > 0 {
			event = event.Strs("matched_"+string(cat), kws)
		}
	}
	for _, c := range changes {
		event = event.Str(types.FlagLabel(c.Flag), fmt.Sprintf("%t -> %t", c.Old, c.New))
	}
	event.Msg("dietary flags differ")
}

func ingredientPreview(ingredients []types.Ingredient) string {
	const shown = 5
	names := make([]string, 0, shown)
	for i, ing := range ingredients {
		if i == shown {
			break
		}
		names = append(names, ing.Name)
	}
	preview := strings.Join(names, ", ")
	if len(ingredients) > shown {
		preview += fmt.Sprintf(" (and %d more)", len(ingredients)-shown)
	}
	return preview
}

func restrictionFlag(restriction string) (string, error) {
	if flag := types.FlagName(restriction); types.IsDetermined(flag) {
		return flag, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRestriction, restriction)
}

// exists reports whether a recipe id is stored, with or without ingredients.
func (t *Tool) exists(ctx context.Context, id int64) (bool, error) {
	all, err := t.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, r := range all {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}
