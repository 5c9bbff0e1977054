package nutrition

import (
	"strings"

	"github.com/monngon/bep/internal/ingredient"
)

// categoryFallbacks maps category keywords to typical per-100g values.
// Matched by substring against the ingredient's category, then its
// name, so "mustard greens" lands on the vegetable row even without a
// category.
var categoryFallbacks = []struct {
	keyword string
	value   ingredient.Nutrition
}{
	{"meat", ingredient.Nutrition{Calories: 240, Protein: 25, Carbs: 0, Fat: 15}},
	{"chicken", ingredient.Nutrition{Calories: 239, Protein: 27, Carbs: 0, Fat: 14}},
	{"beef", ingredient.Nutrition{Calories: 250, Protein: 26, Carbs: 0, Fat: 15}},
	{"pork", ingredient.Nutrition{Calories: 242, Protein: 27, Carbs: 0, Fat: 14}},
	{"seafood", ingredient.Nutrition{Calories: 120, Protein: 20, Carbs: 1, Fat: 4}},
	{"fish", ingredient.Nutrition{Calories: 150, Protein: 22, Carbs: 0, Fat: 7}},
	{"shrimp", ingredient.Nutrition{Calories: 99, Protein: 24, Carbs: 0.2, Fat: 0.3}},
	{"egg", ingredient.Nutrition{Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11}},
	{"dairy", ingredient.Nutrition{Calories: 100, Protein: 6, Carbs: 5, Fat: 6}},
	{"tofu", ingredient.Nutrition{Calories: 76, Protein: 8, Carbs: 1.9, Fat: 4.8}},
	{"grain", ingredient.Nutrition{Calories: 130, Protein: 3, Carbs: 27, Fat: 0.5}},
	{"rice", ingredient.Nutrition{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}},
	{"noodle", ingredient.Nutrition{Calories: 120, Protein: 2.5, Carbs: 25, Fat: 0.5}},
	{"vegetable", ingredient.Nutrition{Calories: 25, Protein: 1.5, Carbs: 5, Fat: 0.2}},
	{"mushroom", ingredient.Nutrition{Calories: 22, Protein: 3.1, Carbs: 3.3, Fat: 0.3}},
	{"herb", ingredient.Nutrition{Calories: 25, Protein: 2, Carbs: 4, Fat: 0.5}},
	{"fruit", ingredient.Nutrition{Calories: 55, Protein: 0.7, Carbs: 14, Fat: 0.2}},
	{"oil", ingredient.Nutrition{Calories: 884, Protein: 0, Carbs: 0, Fat: 100}},
	{"sauce", ingredient.Nutrition{Calories: 50, Protein: 4, Carbs: 6, Fat: 0.5}},
	{"condiment", ingredient.Nutrition{Calories: 60, Protein: 2, Carbs: 10, Fat: 1}},
	{"protein", ingredient.Nutrition{Calories: 150, Protein: 15, Carbs: 5, Fat: 8}},
}

// CategoryFallback returns a rough per-100g estimate from keyword
// matching when no store entry and no backend estimate exists. A blank
// result means nothing matched.
func CategoryFallback(name, category string) ingredient.Nutrition {
	name = strings.ToLower(name)
	category = strings.ToLower(category)

	for _, row := range categoryFallbacks {
		if category != "" && strings.Contains(category, row.keyword) {
			return row.value
		}
	}
	for _, row := range categoryFallbacks {
		if strings.Contains(name, row.keyword) {
			return row.value
		}
	}
	return ingredient.Nutrition{}
}
