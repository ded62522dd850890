// Package normalize maps source-extracted recipe fields into the canonical
// recipe record, running dietary classification and time/difficulty
// estimation along the way. Normalization never fails: missing values fall
// back to defaults.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/recipe-ingest/internal/dietary"
	"github.com/jonathan/recipe-ingest/internal/estimate"
	"github.com/jonathan/recipe-ingest/internal/types"
)

const (
	// PlaceholderName is used for records that arrive without a name.
	PlaceholderName = "Unknown Recipe"
	// DefaultServings is assumed when the source does not say.
	DefaultServings = 4
	// FallbackMealType is used when neither category nor tags decide.
	FallbackMealType = "dinner"
)

// Fields are the source-independent values an adapter extracts from a raw record.
type Fields struct {
	Source       string
	ExternalID   string
	Name         string
	Instructions string
	Category     string
	Cuisine      string
	Tags         string // comma separated
	ImageURL     string
	VideoURL     string
	SourceURL    string
	Ingredients  []types.Ingredient
}

// Build produces the canonical recipe for the extracted fields.
func Build(f Fields) *types.Recipe {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = PlaceholderName
	}

	instructions := CleanInstructions(f.Instructions)
	mealType := MealType(f.Category, f.Tags)
	times := estimate.Times(instructions, len(f.Ingredients))
	difficulty := estimate.Difficulty(instructions, len(f.Ingredients))

	var description *string
	if f.Cuisine != "" && f.Category != "" {
		d := fmt.Sprintf("A delicious %s %s recipe", f.Cuisine, strings.ToLower(f.Category))
		description = &d
	}

	ingredients := f.Ingredients
	if ingredients == nil {
		ingredients = []types.Ingredient{}
	}

	return &types.Recipe{
		Name:             name,
		Description:      description,
		Instructions:     instructions,
		PrepTimeMinutes:  times.Prep,
		CookTimeMinutes:  times.Cook,
		TotalTimeMinutes: times.Total,
		Servings:         DefaultServings,
		Difficulty:       difficulty,
		CuisineType:      types.StringPtr(f.Cuisine),
		MealType:         mealType,
		CourseType:       CourseType(mealType),
		DietaryFlags:     dietary.Classify(ingredients),
		ExternalID:       f.ExternalID,
		ExternalSource:   f.Source,
		ImageURL:         types.StringPtr(f.ImageURL),
		VideoURL:         types.StringPtr(f.VideoURL),
		SourceURL:        types.StringPtr(f.SourceURL),
		Ingredients:      ingredients,
		Tags:             Tags(f.Tags, f.Category),
		EquipmentNeeded:  []string{},
		PopularityScore:  0,
		ComplexityScore:  float64(difficulty) / 5.0,
	}
}

// NewIngredient trims both parts and applies the default amount.
// It returns false when the name is empty.
func NewIngredient(name, amount string) (types.Ingredient, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Ingredient{}, false
	}
	amount = strings.TrimSpace(amount)
	if amount == "" {
		amount = types.DefaultAmount
	}
	return types.Ingredient{Name: name, Amount: amount}, true
}

// CleanInstructions turns raw instruction text into numbered steps, one per line.
func CleanInstructions(text string) string {
	if text == "" {
		return ""
	}

	text = StripMarkup(text)

	// some catalogs double-escape line breaks
	text = strings.ReplaceAll(text, `\r\n`, "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")

	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}

	for i, step := range steps {
		n := strconv.Itoa(i + 1)
		if !strings.HasPrefix(step, n) {
			steps[i] = n + ". " + step
		}
	}

	return strings.Join(steps, "\n")
}

var mealTypeRules = []struct {
	fromTags bool
	words    []string
	mealType string
}{
	{false, []string{"breakfast", "brunch"}, "breakfast"},
	{false, []string{"lunch", "light"}, "lunch"},
	{false, []string{"dinner", "main"}, "dinner"},
	{false, []string{"dessert", "sweet"}, "dessert"},
	{false, []string{"side", "appetizer", "starter"}, "appetizer"},
	{true, []string{"breakfast", "morning"}, "breakfast"},
	{true, []string{"dessert", "sweet", "cake"}, "dessert"},
}

// MealType derives the meal type from a category and a tag string.
// Category rules are checked before tag rules; the first match wins.
func MealType(category, tags string) string {
	category = strings.ToLower(category)
	tags = strings.ToLower(tags)

	for _, rule := range mealTypeRules {
		text := category
		if rule.fromTags {
			text = tags
		}
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				return rule.mealType
			}
		}
	}
	return FallbackMealType
}

// CourseType maps a meal type onto a course.
func CourseType(mealType string) string {
	switch mealType {
	case "breakfast", "lunch", "dinner":
		return "main"
	}
	return mealType
}

// Tags splits a comma separated tag string, adds the category, and
// case-folds everything. Duplicates are dropped, first occurrence kept.
func Tags(tagString, category string) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	for _, tag := range strings.Split(tagString, ",") {
		add(tag)
	}
	add(category)
	return out
}
