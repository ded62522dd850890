// Package types provides type definitions for the recipe records that flow through the ingestion pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"
)

// DefaultAmount is used when a source omits an ingredient quantity.
const DefaultAmount = "to taste"

// RawRecord is one source-shaped record as returned by an external catalog.
// Keys are the catalog's own field names; null fields are absent.
type RawRecord map[string]string

// Get returns the value for key, or "" when the field is missing.
func (r RawRecord) Get(key string) string {
	if r == nil {
		return ""
	}
	return r[key]
}

// Ingredient is a single ingredient line of a recipe
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Recipe is the canonical recipe record persisted by the pipeline.
type Recipe struct {
	ID           int64   `json:"id,omitempty"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Instructions string  `json:"instructions"`

	PrepTimeMinutes  int `json:"prep_time_minutes"`
	CookTimeMinutes  int `json:"cook_time_minutes"`
	TotalTimeMinutes int `json:"total_time_minutes"`
	Servings         int `json:"servings"`
	Difficulty       int `json:"difficulty"` // 1 (very easy) to 5 (expert)

	CuisineType *string `json:"cuisine_type"`
	MealType    string  `json:"meal_type"`
	CourseType  string  `json:"course_type"`

	DietaryFlags

	// Nutrition is never computed by this pipeline; the fields exist so
	// stored rows round-trip without loss.
	CaloriesPerServing *int     `json:"calories_per_serving,omitempty"`
	ProteinGrams       *float64 `json:"protein_grams,omitempty"`
	CarbsGrams         *float64 `json:"carbs_grams,omitempty"`
	FatGrams           *float64 `json:"fat_grams,omitempty"`
	FiberGrams         *float64 `json:"fiber_grams,omitempty"`
	SugarGrams         *float64 `json:"sugar_grams,omitempty"`
	SodiumMg           *float64 `json:"sodium_mg,omitempty"`

	ExternalID     string  `json:"external_id"`
	ExternalSource string  `json:"external_source"`
	ImageURL       *string `json:"image_url"`
	VideoURL       *string `json:"video_url"`
	SourceURL      *string `json:"source_url"`

	Ingredients     []Ingredient `json:"ingredients_json"`
	Tags            []string     `json:"tags"`
	EquipmentNeeded []string     `json:"equipment_needed"`

	PopularityScore float64 `json:"popularity_score"`
	ComplexityScore float64 `json:"complexity_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the dedup key "external_source/external_id".
func (r *Recipe) Key() string {
	return DedupKey(r.ExternalSource, r.ExternalID)
}

// DedupKey builds the uniqueness key for a source and external id.
func DedupKey(source, externalID string) string {
	return source + "/" + externalID
}

// MeetsRestrictions reports whether every given label (e.g. "vegan") is set on the recipe.
func (r *Recipe) MeetsRestrictions(labels ...string) bool {
	have := make(map[string]bool)
	for _, l := range r.Labels() {
		have[l] = true
	}
	for _, l := range labels {
		if !have[l] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	c.Tags = append([]string(nil), r.Tags...)
	c.EquipmentNeeded = append([]string(nil), r.EquipmentNeeded...)
	return &c
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
