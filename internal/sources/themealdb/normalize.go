package themealdb

import (
	"strconv"

	"github.com/jonathan/recipe-ingest/internal/normalize"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// maxIngredientSlots is the number of strIngredientN/strMeasureN pairs a meal carries.
const maxIngredientSlots = 20

// Normalize maps a TheMealDB meal onto the canonical recipe.
func Normalize(raw types.RawRecord) *types.Recipe {
	return normalize.Build(normalize.Fields{
		Source:       SourceName,
		ExternalID:   raw.Get("idMeal"),
		Name:         raw.Get("strMeal"),
		Instructions: raw.Get("strInstructions"),
		Category:     raw.Get("strCategory"),
		Cuisine:      raw.Get("strArea"),
		Tags:         raw.Get("strTags"),
		ImageURL:     raw.Get("strMealThumb"),
		VideoURL:     raw.Get("strYoutube"),
		SourceURL:    raw.Get("strSource"),
		Ingredients:  Ingredients(raw),
	})
}

// Ingredients extracts the numbered ingredient slots in order. Empty slots
// can sit between filled ones, so every slot is checked.
func Ingredients(raw types.RawRecord) []types.Ingredient {
	ingredients := []types.Ingredient{}
	for i := 1; i <= maxIngredientSlots; i++ {
		n := strconv.Itoa(i)
		if ing, ok := normalize.NewIngredient(raw.Get("strIngredient"+n), raw.Get("strMeasure"+n)); ok {
			ingredients = append(ingredients, ing)
		}
	}
	return ingredients
}
