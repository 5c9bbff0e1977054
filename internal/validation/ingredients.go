// Package validation holds the fast heuristic checks performed on a
// suggestion request before it costs a translation or generation call.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MaxIngredients caps the ingredient list per request.
	MaxIngredients = 20
	// MaxIngredientLength caps one ingredient's raw text.
	MaxIngredientLength = 100
)

// Result contains the outcome of request validation.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Reason  string   `json:"reason,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

// ValidateIngredients performs a fast heuristic check on the raw
// ingredient list without store or API calls. Individual suspicious
// items are reported but only structural problems (empty list, too
// many items, every item rejected) invalidate the request.
func ValidateIngredients(ingredients []string) Result {
	nonEmpty := 0
	for _, ing := range ingredients {
		if strings.TrimSpace(ing) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return Result{
			IsValid: false,
			Reason:  "No ingredients provided",
		}
	}

	if len(ingredients) > MaxIngredients {
		return Result{
			IsValid: false,
			Reason:  fmt.Sprintf("Too many ingredients (%d). Maximum is %d.", len(ingredients), MaxIngredients),
		}
	}

	var invalid []string
	for _, ing := range ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		if reason := checkIngredientText(ing); reason != "" {
			invalid = append(invalid, ing)
		}
	}

	if len(invalid) == nonEmpty {
		return Result{
			IsValid: false,
			Reason:  "No usable ingredients in the list",
			Invalid: invalid,
		}
	}

	return Result{IsValid: true, Invalid: invalid}
}

// checkIngredientText returns a non-empty reason when the text cannot
// plausibly name a food ingredient.
func checkIngredientText(text string) string {
	if len(text) > MaxIngredientLength {
		return "too long"
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "http://") || strings.Contains(lower, "https://") || strings.Contains(lower, "www.") {
		return "looks like a URL"
	}

	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return "no letters"
	}
	return ""
}
