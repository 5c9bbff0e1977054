package suggest

// GeneratedIngredient is one ingredient line of a generated recipe.
type GeneratedIngredient struct {
	CanonicalName string  `json:"canonical_name"`
	DisplayName   string  `json:"display_name"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	Importance    string  `json:"importance"`
}

// GeneratedRecipe is one recipe produced by the generation backend.
type GeneratedRecipe struct {
	Name               string                `json:"name"`
	Description        string                `json:"description"`
	Ingredients        []GeneratedIngredient `json:"ingredients"`
	Steps              []string              `json:"steps"`
	CookingTimeMinutes int                   `json:"cooking_time_minutes"`
	Difficulty         string                `json:"difficulty"`
	Servings           int                   `json:"servings"`
}

// IncompatibleIngredient names a requested ingredient the backend
// excluded, with its reason.
type IncompatibleIngredient struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Compatibility is the backend's analysis of which requested
// ingredients belong in one coherent dish.
type Compatibility struct {
	Compatible   []string                 `json:"compatible"`
	Incompatible []IncompatibleIngredient `json:"incompatible"`
	Explanation  string                   `json:"explanation"`
}

// GenerationResult is a parsed generation response. Compatibility is
// nil when the backend answered in the legacy bare-list format.
type GenerationResult struct {
	Compatibility *Compatibility    `json:"compatibility,omitempty"`
	Recipes       []GeneratedRecipe `json:"recipes"`
}
