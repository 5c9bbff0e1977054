package cache

import (
	"time"

	"github.com/monngon/bep/internal/ingredient"
)

// MealTypes is the fixed set of accepted meal types. Anything else is
// quantized to MealTypeNone.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack", "dessert"}

const MealTypeNone = "none"

// CookingTimes is the fixed set of cooking-time ceilings in minutes.
// Requested ceilings are snapped up into this set so they cannot
// fragment the cache.
var CookingTimes = []int{15, 30, 45, 60, 90, 120}

const (
	MinServings = 1
	MaxServings = 5
)

// RequestSettings carries everything a client can tune on a suggestion
// request. Only the quantized subset participates in the cache key;
// disliked ingredients, skill level and cooking methods are post-filters.
type RequestSettings struct {
	Servings                int      `json:"servings"`
	MealType                string   `json:"meal_type"`
	MaxCookingTime          int      `json:"max_cooking_time"`
	DislikedIngredients     []string `json:"disliked_ingredients,omitempty"`
	SkillLevel              string   `json:"skill_level,omitempty"`
	PreferredCookingMethods []string `json:"preferred_cooking_methods,omitempty"`
}

// QuantizedSettings is the subset of settings baked into the cache key.
type QuantizedSettings struct {
	Servings       int    `json:"servings"`
	MealType       string `json:"meal_type"`
	MaxCookingTime int    `json:"max_cooking_time"`
}

// SuggestionIngredient is one ingredient line of a generated recipe.
type SuggestionIngredient struct {
	CanonicalName string  `json:"canonical_name"`
	DisplayName   string  `json:"display_name"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	Importance    string  `json:"importance"`
}

// Suggestion is one cooked-dish recommendation.
type Suggestion struct {
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	Ingredients         []SuggestionIngredient `json:"ingredients"`
	Steps               []string               `json:"steps"`
	CookingTimeMinutes  int                    `json:"cooking_time_minutes"`
	Difficulty          string                 `json:"difficulty"`
	Servings            int                    `json:"servings"`
	NutritionPerServing ingredient.Nutrition   `json:"nutrition_per_serving"`
}

// Entry is a cached suggestion set. Ingredients lists the distinct
// canonical ingredients actually present in the suggestions, which is
// also exactly the set indexed in the reverse ingredient index; the
// cache key is always derivable from it plus the quantized settings.
type Entry struct {
	CacheKey    string          `json:"cache_key"`
	Suggestions []Suggestion    `json:"suggestions"`
	Settings    RequestSettings `json:"settings"`
	Ingredients []string        `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Expired reports whether the entry's TTL has elapsed; reads re-check
// this because store-side reaping is advisory.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
