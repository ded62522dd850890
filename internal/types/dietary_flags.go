package types

// Flag names as stored and reported.
const (
	FlagVegetarian = "is_vegetarian"
	FlagVegan      = "is_vegan"
	FlagGlutenFree = "is_gluten_free"
	FlagDairyFree  = "is_dairy_free"
	FlagNutFree    = "is_nut_free"
	FlagLowCarb    = "is_low_carb"
	FlagKeto       = "is_keto"
	FlagPaleo      = "is_paleo"
)

// DietaryFlags holds the dietary-compliance indicators of a recipe.
//
// LowCarb and Keto cannot be derived from ingredient names and are always
// false. They mean "not determined", never "confirmed not low-carb".
type DietaryFlags struct {
	Vegetarian bool `json:"is_vegetarian"`
	Vegan      bool `json:"is_vegan"`
	GlutenFree bool `json:"is_gluten_free"`
	DairyFree  bool `json:"is_dairy_free"`
	NutFree    bool `json:"is_nut_free"`
	LowCarb    bool `json:"is_low_carb"`
	Keto       bool `json:"is_keto"`
	Paleo      bool `json:"is_paleo"`
}

// DeterminedFlags lists the flags the classifier can decide, in report order.
var DeterminedFlags = []string{
	FlagVegetarian,
	FlagVegan,
	FlagGlutenFree,
	FlagDairyFree,
	FlagNutFree,
	FlagPaleo,
}

// Undetermined returns the flags that carry no information.
func (f DietaryFlags) Undetermined() []string {
	return []string{FlagLowCarb, FlagKeto}
}

// IsDetermined reports whether the named flag is backed by classification.
func IsDetermined(flag string) bool {
	for _, d := range DeterminedFlags {
		if d == flag {
			return true
		}
	}
	return false
}

// Get returns the value of a flag by its stored name.
func (f DietaryFlags) Get(flag string) (bool, bool) {
	switch flag {
	case FlagVegetarian:
		return f.Vegetarian, true
	case FlagVegan:
		return f.Vegan, true
	case FlagGlutenFree:
		return f.GlutenFree, true
	case FlagDairyFree:
		return f.DairyFree, true
	case FlagNutFree:
		return f.NutFree, true
	case FlagLowCarb:
		return f.LowCarb, true
	case FlagKeto:
		return f.Keto, true
	case FlagPaleo:
		return f.Paleo, true
	}
	return false, false
}

// Set assigns a flag by its stored name. Unknown names are ignored.
func (f *DietaryFlags) Set(flag string, v bool) {
	switch flag {
	case FlagVegetarian:
		f.Vegetarian = v
	case FlagVegan:
		f.Vegan = v
	case FlagGlutenFree:
		f.GlutenFree = v
	case FlagDairyFree:
		f.DairyFree = v
	case FlagNutFree:
		f.NutFree = v
	case FlagLowCarb:
		f.LowCarb = v
	case FlagKeto:
		f.Keto = v
	case FlagPaleo:
		f.Paleo = v
	}
}

// Labels returns the short names ("vegan", "gluten_free", ...) of the
// determined flags that are true.
func (f DietaryFlags) Labels() []string {
	var labels []string
	for _, name := range DeterminedFlags {
		if v, _ := f.Get(name); v {
			labels = append(labels, FlagLabel(name))
		}
	}
	return labels
}

// FlagLabel strips the "is_" prefix from a flag name.
func FlagLabel(flag string) string {
	if len(flag) > 3 && flag[:3] == "is_" {
		return flag[3:]
	}
	return flag
}

// FlagName is the inverse of FlagLabel.
func FlagName(label string) string {
	return "is_" + label
}
