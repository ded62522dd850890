package estimate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		name         string
		instructions string
		ingredients  int
		want         Durations
	}{
		{"baseline", "Mix everything.", 3, Durations{Prep: 6, Cook: 15, Total: 21}},
		{"prep floor", "Mix everything.", 1, Durations{Prep: 5, Cook: 15, Total: 20}},
		{"clamped prep", "", 100, Durations{Prep: 60, Cook: 15, Total: 75}},
		{"oven", "Bake in the oven until golden.", 4, Durations{Prep: 8, Cook: 35, Total: 43}},
		{"slow", "Simmer gently.", 2, Durations{Prep: 5, Cook: 45, Total: 50}},
		{"resting", "Marinate overnight.", 5, Durations{Prep: 40, Cook: 15, Total: 55}},
		{"quick floors", "A quick dish.", 1, Durations{Prep: 5, Cook: 10, Total: 15}},
		{"mentioned override", "Cook for 2 hours and 30 minutes.", 4, Durations{Prep: 5, Cook: 150, Total: 155}},
		{"mentioned smaller keeps estimate", "Bake for 5 minute", 4, Durations{Prep: 8, Cook: 35, Total: 43}},
		{"cook clamp", "Roast for 5 hours.", 2, Durations{Prep: 5, Cook: 180, Total: 185}},
		{"total clamp", "Braise for 4 hours.", 40, Durations{Prep: 60, Cook: 180, Total: 240}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Times(tt.instructions, tt.ingredients))
		})
	}
}

func TestTimes_Bounds(t *testing.T) {
	texts := []string{"", "bake", "simmer 9 hours", "chill, quick", strings.Repeat("roast 90 minutes ", 20)}
	for _, text := range texts {
		for n := 0; n <= 60; n += 7 {
			got := Times(text, n)
			assert.GreaterOrEqual(t, got.Prep, 5)
			assert.LessOrEqual(t, got.Prep, 60)
			assert.LessOrEqual(t, got.Cook, 180)
			assert.LessOrEqual(t, got.Total, 240)
			assert.Equal(t, min(got.Prep+got.Cook, 240), got.Total)
		}
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name         string
		instructions string
		ingredients  int
		want         int
	}{
		{"trivial", "", 0, 1},
		{"eleven ingredients", "", 11, 2},
		{"sixteen ingredients", "", 16, 2},
		{"technique", "Fold in the egg whites.", 2, 2},
		{"technique and many ingredients", "Fold in the egg whites.", 16, 3},
		{"half steps round up", "Fold gently.", 11, 3},
		{"three methods", "Bake, then fry and grill.", 0, 2},
		{"two methods", "Bake, then fry.", 0, 1},
		{"long text", strings.Repeat("a", 1001), 0, 2},
		{"multibyte text counts characters", strings.Repeat("é", 600), 0, 1},
		{"long multibyte text", strings.Repeat("é", 1001), 0, 2},
		{"sous-vide spelling", "Cook sous-vide at 60C.", 0, 2},
		{"everything", "Deglaze, bake, fry, grill. " + strings.Repeat("x", 1000), 20, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Difficulty(tt.instructions, tt.ingredients))
		})
	}
}

func TestDifficulty_Range(t *testing.T) {
	for n := 0; n < 40; n++ {
		d := Difficulty(strings.Repeat("whip bake fry roast ", n*10), n)
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 5)
	}
}
