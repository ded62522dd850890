// Package report summarizes the stored recipe catalog.
package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jonathan/recipe-ingest/internal/store"
	"github.com/jonathan/recipe-ingest/internal/types"
)

const (
	// TopCuisines is the number of cuisines listed.
	TopCuisines = 10
	// RecentWindow bounds the "recent additions" count.
	RecentWindow = 24 * time.Hour
)

// Lister is the part of store.Store a report reads.
type Lister interface {
	List(ctx context.Context) ([]*types.Recipe, error)
}

var _ Lister = store.Store(nil)

// Options controls optional sections.
type Options struct {
	Samples int
}

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DietaryCount is the number of recipes carrying a flag.
type DietaryCount struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	// Example is the first recipe carrying the flag, if any.
	Example string `json:"example,omitempty"`
}

// Summary describes the catalog at a point in time.
type Summary struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Total           int             `json:"total"`
	Sources         []Count         `json:"sources"`
	Dietary         []DietaryCount  `json:"dietary"`
	Undetermined    []string        `json:"undetermined"`
	Cuisines        []Count         `json:"cuisines"`
	MealTypes       []Count         `json:"meal_types"`
	Difficulty      []Count         `json:"difficulty"`
	AvgPrepMinutes  float64         `json:"avg_prep_minutes"`
	AvgCookMinutes  float64         `json:"avg_cook_minutes"`
	RecentAdditions int             `json:"recent_additions"`
	VeganGlutenFree int             `json:"vegan_gluten_free"`
	Samples         []*types.Recipe `json:"samples,omitempty"`
}

// Build reads every recipe and computes the summary.
func Build(ctx context.Context, s Lister, now time.Time, opts Options) (*Summary, error) {
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	sum := &Summary{
		GeneratedAt:  now,
		Total:        len(recipes),
		Undetermined: types.DietaryFlags{}.Undetermined(),
	}

	sources := map[string]int{}
	cuisines := map[string]int{}
	mealTypes := map[string]int{}
	difficulty := map[string]int{}
	flagCounts := make([]DietaryCount, len(types.DeterminedFlags))
	for i, flag := range types.DeterminedFlags {
		flagCounts[i].Label = types.FlagLabel(flag)
	}

	var prepSum, prepN, cookSum, cookN int
	cutoff := now.Add(-RecentWindow)

	for _, r := range recipes {
		if r.ExternalSource != "" {
			sources[r.ExternalSource]++
		}
		if c := types.Deref(r.CuisineType); c != "" {
			cuisines[c]++
		}
		if r.MealType != "" {
			mealTypes[r.MealType]++
		}
		if r.Difficulty > 0 {
			difficulty[strconv.Itoa(r.Difficulty)]++
		}
		if r.PrepTimeMinutes > 0 {
			prepSum += r.PrepTimeMinutes
			prepN++
		}
		if r.CookTimeMinutes > 0 {
			cookSum += r.CookTimeMinutes
			cookN++
		}
		if r.CreatedAt.After(cutoff) {
			sum.RecentAdditions++
		}
		if r.MeetsRestrictions("vegan", "gluten_free") {
			sum.VeganGlutenFree++
		}
		for i, flag := range types.DeterminedFlags {
			if v, _ := r.Get(flag); v {
				flagCounts[i].Count++
				if flagCounts[i].Example == "" {
					flagCounts[i].Example = r.Name
				}
			}
		}
	}

	for i := range flagCounts {
		flagCounts[i].Percent = percent(flagCounts[i].Count, sum.Total)
	}
	sum.Dietary = flagCounts
	sum.Sources = byCount(sources)
	sum.Cuisines = byCount(cuisines)
	if len(sum.Cuisines) > TopCuisines {
		sum.Cuisines = sum.Cuisines[:TopCuisines]
	}
	sum.MealTypes = byCount(mealTypes)
	sum.Difficulty = byLabel(difficulty)
	sum.AvgPrepMinutes = average(prepSum, prepN)
	sum.AvgCookMinutes = average(cookSum, cookN)

	if opts.Samples > 0 {
		n := min(opts.Samples, len(recipes))
		sum.Samples = recipes[:n]
	}

	return sum, nil
}

// Flag returns the dietary count for a label such as "vegan".
func (s *Summary) Flag(label string) DietaryCount {
	for _, d := range s.Dietary {
		if d.Label == label {
			return d
		}
	}
	return DietaryCount{Label: label}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// byCount orders by descending count, ties by label.
func byCount(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func byLabel(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	return out
}
