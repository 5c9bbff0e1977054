package ai

import (
	"fmt"
	"strings"
)

const translationRoleSection = `<ROLE>
You are a specialized AI assistant for a Vietnamese cooking application. Your task is to validate and translate a single Vietnamese ingredient name into a canonical English form suitable for lookups and nutrition databases.
</ROLE>`

const translationGuidelinesSection = `<VALIDATION_GUIDELINES>
When presented with an ingredient name:
1. First decide whether it names a real, edible food ingredient. Brand names, dish names, non-food words, gibberish, URLs, and numbers are NOT valid ingredients.
2. If valid, produce:
   - canonical: the common English name, lowercase, singular (e.g. "chicken", "scallion", "fish sauce")
   - general_form: the broader family the ingredient belongs to (e.g. "scallion" -> "onion", "pork belly" -> "pork")
   - category: one of meat, seafood, vegetable, fruit, grain, dairy, protein, condiment, other
3. Translate the meaning, not the words: "hành lá" is "scallion", not "leaf onion".
4. Regional Vietnamese names and common misspellings should still resolve to the standard ingredient when the intent is clear.
</VALIDATION_GUIDELINES>`

const translationOutputSection = `<OUTPUT_FORMAT>
Always respond with a single JSON object and nothing else:

{
  "valid": true,
  "canonical": "",
  "general_form": "",
  "category": ""
}

If the input is not a real edible ingredient, respond with:

{
  "valid": false
}
</OUTPUT_FORMAT>`

const nutritionRoleSection = `<ROLE>
You are a nutrition estimation assistant. Given the canonical English name of a single food ingredient, estimate its typical nutritional values per 100 grams of the edible portion.
</ROLE>`

const nutritionGuidelinesSection = `<ESTIMATION_GUIDELINES>
- Use typical raw values unless the ingredient is only consumed cooked.
- Values are per 100 grams: calories in kcal, protein, carbs and fat in grams.
- For composite ingredients (sauces, pastes) use the standard commercial product.
- Prefer slightly conservative estimates over extreme ones.
</ESTIMATION_GUIDELINES>`

const nutritionOutputSection = `<OUTPUT_FORMAT>
Always respond with a single JSON object and nothing else:

{
  "calories": 0,
  "protein": 0,
  "carbs": 0,
  "fat": 0
}
</OUTPUT_FORMAT>`

const suggestionRoleSection = `<ROLE>
You are a Vietnamese home-cooking assistant. Given a list of available ingredients and the cook's constraints, you design exactly one coherent dish that uses the compatible ingredients.
</ROLE>`

const compatibilitySection = `<COMPATIBILITY_ANALYSIS>
Before designing the dish:
1. Classify the requested ingredients as compatible or incompatible for a single coherent dish. Ingredients are incompatible when they cannot plausibly appear together in one Vietnamese home-style dish (e.g. dessert fruit with fish sauce-based savory mains).
2. For every incompatible ingredient, give a short reason.
3. Use ONLY the compatible ingredients in the recipe. You may use a sensible subset; you do not have to use every compatible ingredient. Pantry staples (salt, sugar, oil, water) may be assumed.
</COMPATIBILITY_ANALYSIS>`

const suggestionGuidelinesSection = `<RECIPE_GUIDELINES>
- The dish must respect every stated constraint: servings, meal type, maximum cooking time, disliked ingredients, preferred cooking methods, and the cook's skill level.
- Ingredient lines need both names: canonical_name is the English name in lowercase slug form matching the request's ingredient list where applicable; display_name is the natural Vietnamese name.
- Amounts are metric: grams (g), milliliters (ml), or count units (piece, clove, stalk).
- importance is one of: essential, important, optional.
- Steps are ordered, concrete, and include heat levels and visual cues.
- difficulty is one of: easy, medium, hard.
</RECIPE_GUIDELINES>`

const suggestionOutputSection = `<OUTPUT_FORMAT>
Always respond with a single JSON object and nothing else:

{
  "compatibility": {
    "compatible": [""],
    "incompatible": [
      { "name": "", "reason": "" }
    ],
    "explanation": ""
  },
  "recipes": [
    {
      "name": "",
      "description": "",
      "ingredients": [
        {
          "canonical_name": "",
          "display_name": "",
          "amount": 0,
          "unit": "",
          "importance": ""
        }
      ],
      "steps": [""],
      "cooking_time_minutes": 0,
      "difficulty": "",
      "servings": 0
    }
  ]
}
</OUTPUT_FORMAT>`

// BuildTranslationPrompt returns the system prompt for validating and
// translating one Vietnamese ingredient name.
func BuildTranslationPrompt() string {
	var sb strings.Builder
	sb.WriteString(translationRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString(translationGuidelinesSection)
	sb.WriteString("\n\n")
	sb.WriteString(translationOutputSection)
	return sb.String()
}

// BuildNutritionPrompt returns the system prompt for estimating
// per-100g nutrition of a canonical ingredient.
func BuildNutritionPrompt() string {
	var sb strings.Builder
	sb.WriteString(nutritionRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString(nutritionGuidelinesSection)
	sb.WriteString("\n\n")
	sb.WriteString(nutritionOutputSection)
	return sb.String()
}

// BuildSuggestionPrompt returns the system prompt for compatibility
// analysis plus recipe generation.
func BuildSuggestionPrompt() string {
	var sb strings.Builder
	sb.WriteString(suggestionRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString(compatibilitySection)
	sb.WriteString("\n\n")
	sb.WriteString(suggestionGuidelinesSection)
	sb.WriteString("\n\n")
	sb.WriteString(suggestionOutputSection)
	return sb.String()
}

// SuggestionRequest is the user-message half of a generation prompt.
type SuggestionRequest struct {
	Ingredients             []IngredientLine
	Servings                int
	MealType                string
	MaxCookingTime          int
	DislikedIngredients     []string
	SkillLevel              string
	PreferredCookingMethods []string
}

// IngredientLine pairs a canonical English name with its Vietnamese
// display form for the prompt.
type IngredientLine struct {
	Canonical string
	Display   string
}

// FormatSuggestionRequest renders the user message for a generation
// call: the available ingredients and every constraint the dish must
// respect.
func FormatSuggestionRequest(req SuggestionRequest) string {
	var sb strings.Builder

	sb.WriteString("Available ingredients:\n")
	for _, ing := range req.Ingredients {
		if ing.Display != "" && ing.Display != ing.Canonical {
			fmt.Fprintf(&sb, "- %s (%s)\n", ing.Canonical, ing.Display)
		} else {
			fmt.Fprintf(&sb, "- %s\n", ing.Canonical)
		}
	}

	sb.WriteString("\nConstraints:\n")
	fmt.Fprintf(&sb, "- Servings: %d\n", req.Servings)
	if req.MealType != "" && req.MealType != "none" {
		fmt.Fprintf(&sb, "- Meal type: %s\n", req.MealType)
	}
	if req.MaxCookingTime > 0 {
		fmt.Fprintf(&sb, "- Maximum cooking time: %d minutes\n", req.MaxCookingTime)
	}
	if len(req.DislikedIngredients) > 0 {
		fmt.Fprintf(&sb, "- Must not contain: %s\n", strings.Join(req.DislikedIngredients, ", "))
	}
	if req.SkillLevel != "" {
		fmt.Fprintf(&sb, "- Cook's skill level: %s\n", req.SkillLevel)
	}
	if len(req.PreferredCookingMethods) > 0 {
		fmt.Fprintf(&sb, "- Preferred cooking methods: %s\n", strings.Join(req.PreferredCookingMethods, ", "))
	}

	return sb.String()
}

// FormatTranslationRequest renders the user message for a translation call.
func FormatTranslationRequest(ingredientText string) string {
	return "Ingredient: " + ingredientText
}

// FormatNutritionRequest renders the user message for a nutrition call.
func FormatNutritionRequest(canonical string) string {
	return "Ingredient: " + canonical
}
