// Package dietary infers dietary-restriction flags from ingredient names.
//
// Classification is keyword based: every ingredient name is case-folded and
// joined into one blob, and a restricted category is considered present when
// any of its keywords occurs anywhere in that blob. There is no tokenization,
// so "almond extract" marks a recipe as containing nuts and "graham crackers"
// matches the meat keyword "ham". This over-reports restrictions in exchange
// for recall, and both ingestion and reclassification use the same lists.
package dietary

import (
	"strings"

	"github.com/jonathan/recipe-ingest/internal/types"
)

// Result is a classification with the keywords that produced it.
type Result struct {
	Flags   types.DietaryFlags
	Matches map[Category][]string
	Version string
}

// Has reports whether any keyword of the category matched.
func (r Result) Has(c Category) bool {
	return len(r.Matches[c]) > 0
}

// Classify returns the dietary flags for an ingredient list.
// An empty list yields every determinable flag set to true.
func Classify(ingredients []types.Ingredient) types.DietaryFlags {
	return Explain(ingredients).Flags
}

// Explain classifies the ingredients and records which keywords matched in
// each category.
func Explain(ingredients []types.Ingredient) Result {
	blob := ingredientText(ingredients)

	matches := make(map[Category][]string, len(Categories))
	for _, c := range Categories {
		for _, kw := range keywordSets[c] {
			if strings.Contains(blob, kw) {
				matches[c] = append(matches[c], kw)
			}
		}
	}

	res := Result{Matches: matches, Version: KeywordSetVersion}
	res.Flags = derive(res.Has(Meat), res.Has(Dairy), res.Has(Gluten), res.Has(Nuts))
	return res
}

func derive(hasMeat, hasDairy, hasGluten, hasNuts bool) types.DietaryFlags {
	return types.DietaryFlags{
		Vegetarian: !hasMeat,
		Vegan:      !hasMeat && !hasDairy,
		GlutenFree: !hasGluten,
		DairyFree:  !hasDairy,
		NutFree:    !hasNuts,
		// low-carb and keto need nutrition data
		LowCarb: false,
		Keto:    false,
		// simplified: legumes and non-gluten grains are not checked
		Paleo: !hasDairy && !hasGluten,
	}
}

func ingredientText(ingredients []types.Ingredient) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, strings.ToLower(ing.Name))
	}
	return strings.Join(names, " ")
}
