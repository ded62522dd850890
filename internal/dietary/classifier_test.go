package dietary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recipe-ingest/internal/types"
)

func ingredients(names ...string) []types.Ingredient {
	out := make([]types.Ingredient, 0, len(names))
	for _, n := range names {
		out = append(out, types.Ingredient{Name: n, Amount: types.DefaultAmount})
	}
	return out
}

func TestClassify_EmptyIsFree(t *testing.T) {
	flags := Classify(nil)

	assert.True(t, flags.Vegetarian)
	assert.True(t, flags.Vegan)
	assert.True(t, flags.GlutenFree)
	assert.True(t, flags.DairyFree)
	assert.True(t, flags.NutFree)
	assert.True(t, flags.Paleo)
	assert.False(t, flags.LowCarb)
	assert.False(t, flags.Keto)
}

func TestClassify_VeggieStirFry(t *testing.T) {
	flags := Classify(ingredients("tofu", "soy sauce", "rice"))

	assert.True(t, flags.Vegetarian)
	assert.True(t, flags.Vegan)
	assert.False(t, flags.GlutenFree, "soy sauce is a hidden gluten source")
	assert.True(t, flags.DairyFree)
	assert.False(t, flags.Paleo)
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  types.DietaryFlags
	}{
		{
			name:  "plain vegetables",
			input: []string{"Onion", "Garlic", "Tomato", "Olive Oil"},
			want:  types.DietaryFlags{Vegetarian: true, Vegan: true, GlutenFree: true, DairyFree: true, NutFree: true, Paleo: true},
		},
		{
			name:  "dairy only",
			input: []string{"Whole Milk", "Sugar"},
			want:  types.DietaryFlags{Vegetarian: true, Vegan: false, GlutenFree: true, DairyFree: false, NutFree: true, Paleo: false},
		},
		{
			name:  "meat and flour",
			input: []string{"CHICKEN Thighs", "Plain Flour"},
			want:  types.DietaryFlags{Vegetarian: false, Vegan: false, GlutenFree: false, DairyFree: true, NutFree: true, Paleo: false},
		},
		{
			name:  "stock implies meat",
			input: []string{"Carrot", "chicken stock"},
			want:  types.DietaryFlags{Vegetarian: false, Vegan: false, GlutenFree: true, DairyFree: true, NutFree: true, Paleo: true},
		},
		{
			name:  "nuts",
			input: []string{"Peanut Butter", "Banana"},
			want:  types.DietaryFlags{Vegetarian: true, Vegan: false, GlutenFree: true, DairyFree: false, NutFree: false, Paleo: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(ingredients(tt.input...)))
		})
	}
}

func TestClassify_AnyMeatKeywordRulesOutVegetarian(t *testing.T) {
	for _, kw := range Keywords(Meat) {
		flags := Classify(ingredients("water", kw))
		assert.False(t, flags.Vegetarian, kw)
		assert.False(t, flags.Vegan, kw)
	}
}

func TestClassify_VeganImpliesVegetarian(t *testing.T) {
	pool := []string{"tofu", "rice", "lettuce", "spinach", "potato"}
	for _, c := range Categories {
		pool = append(pool, Keywords(c)...)
	}

	for i := range pool {
		for _, j := range []int{0, i / 2, len(pool) - 1 - i} {
			flags := Classify(ingredients(pool[i], pool[j]))
			if flags.Vegan {
				assert.True(t, flags.Vegetarian, "%s + %s", pool[i], pool[j])
			}
		}
	}
}

func TestClassify_SubstringTradeOffs(t *testing.T) {
	// extracts are treated as nut sources
	assert.False(t, Classify(ingredients("vanilla extract")).NutFree)
	assert.False(t, Classify(ingredients("almond extract")).NutFree)

	// "graham crackers" contains "ham"
	flags := Classify(ingredients("graham crackers"))
	assert.False(t, flags.Vegetarian)
	assert.False(t, flags.GlutenFree)
}

func TestClassify_AmountIsIgnored(t *testing.T) {
	flags := Classify([]types.Ingredient{{Name: "water", Amount: "1 cup milk"}})
	assert.True(t, flags.DairyFree)
}

func TestExplain_Provenance(t *testing.T) {
	res := Explain(ingredients("soy sauce", "chicken breast"))

	require.Equal(t, KeywordSetVersion, res.Version)
	assert.Contains(t, res.Matches[Gluten], "soy sauce")
	assert.Contains(t, res.Matches[Meat], "chicken")
	assert.Contains(t, res.Matches[Meat], "chicken breast")
	assert.False(t, res.Has(Dairy))
	assert.Equal(t, Classify(ingredients("soy sauce", "chicken breast")), res.Flags)
}

func TestKeywords_ReturnsCopy(t *testing.T) {
	kws := Keywords(Nuts)
	require.NotEmpty(t, kws)
	kws[0] = "changed"
	assert.NotEqual(t, "changed", Keywords(Nuts)[0])
}

func TestKeywords_NoDuplicates(t *testing.T) {
	for _, c := range Categories {
		seen := make(map[string]bool)
		for _, kw := range Keywords(c) {
			assert.False(t, seen[kw], "%s listed twice in %s", kw, c)
			seen[kw] = true
		}
	}
}
