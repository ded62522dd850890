// Package estimate derives preparation time, cooking time, and difficulty
// from recipe instructions when the source does not provide them.
package estimate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxPrepMinutes  = 60
	maxCookMinutes  = 180
	maxTotalMinutes = 240

	minPrepMinutes   = 5
	baseCookMinutes  = 15
	minQuickCookTime = 10

	maxDifficulty = 5
	longTextChars = 1000
)

var (
	ovenWords    = []string{"bake", "roast", "oven"}
	slowWords    = []string{"simmer", "slow", "braise"}
	restingWords = []string{"marinate", "chill", "refrigerate"}
	quickWords   = []string{"quick", "fast", "minutes"}

	complexTechniques = []string{
		"fold", "whip", "emulsify", "temper", "reduce", "deglaze",
		"julienne", "brunoise", "chiffonade", "sous vide", "sous-vide",
	}
	cookingMethods = []string{"bake", "fry", "sauté", "braise", "roast", "grill", "steam"}

	durationPattern = regexp.MustCompile(`(\d+)\s*(minute|hour)`)
)

// Durations holds estimated durations in minutes.
type Durations struct {
	Prep  int `json:"prep_time_minutes"`
	Cook  int `json:"cook_time_minutes"`
	Total int `json:"total_time_minutes"`
}

// Times estimates prep, cook and total minutes from instruction text and the
// number of ingredients.
func Times(instructions string, ingredientCount int) Durations {
	text := strings.ToLower(instructions)

	prep := max(minPrepMinutes, ingredientCount*2)
	cook := baseCookMinutes

	if containsAny(text, ovenWords) {
		cook += 20
	}
	if containsAny(text, slowWords) {
		cook += 30
	}
	if containsAny(text, restingWords) {
		prep += 30
	}
	if containsAny(text, quickWords) {
		cook = max(minQuickCookTime, cook-10)
		prep = max(minPrepMinutes, prep-5)
	}

	// explicit durations override the keyword estimate when larger
	if mentioned, ok := mentionedMinutes(text); ok {
		cook = max(cook, mentioned)
	}

	prep = min(prep, maxPrepMinutes)
	cook = min(cook, maxCookMinutes)

	return Durations{
		Prep:  prep,
		Cook:  cook,
		Total: min(prep+cook, maxTotalMinutes),
	}
}

// Difficulty rates a recipe from 1 (very easy) to 5 (expert).
func Difficulty(instructions string, ingredientCount int) int {
	text := strings.ToLower(instructions)
	difficulty := 1.0

	switch {
	case ingredientCount > 15:
		difficulty += 1
	case ingredientCount > 10:
		difficulty += 0.5
	}

	if containsAny(text, complexTechniques) {
		difficulty += 1
	}

	methods := 0
	for _, m := range cookingMethods {
		if strings.Contains(text, m) {
			methods++
		}
	}
	if methods > 2 {
		difficulty += 0.5
	}

	if utf8.RuneCountInString(instructions) > longTextChars {
		difficulty += 0.5
	}

	// round half up
	return min(int(difficulty+0.5), maxDifficulty)
}

func mentionedMinutes(text string) (int, bool) {
	found := durationPattern.FindAllStringSubmatch(text, -1)
	if len(found) == 0 {
		return 0, false
	}

	total := 0
	for _, m := range found {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if m[2] == "hour" {
			n *= 60
		}
		total += n
	}
	return total, true
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
