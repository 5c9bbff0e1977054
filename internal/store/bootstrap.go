package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/monngon/bep/internal/ingredient"
)

// seedRow is one bootstrap dictionary entry. Nutrition is per 100g.
type seedRow struct {
	source    string
	canonical string
	general   string
	category  string
	nutrition ingredient.Nutrition
}

// bootstrapSeed covers the ingredients that show up in nearly every
// Vietnamese home-cooking request, so cold starts resolve them without
// a single generation call.
var bootstrapSeed = []seedRow{
	{"thịt gà", "chicken", "chicken", "meat", ingredient.Nutrition{Calories: 239, Protein: 27, Carbs: 0, Fat: 14}},
	{"thịt bò", "beef", "beef", "meat", ingredient.Nutrition{Calories: 250, Protein: 26, Carbs: 0, Fat: 15}},
	{"thịt heo", "pork", "pork", "meat", ingredient.Nutrition{Calories: 242, Protein: 27, Carbs: 0, Fat: 14}},
	{"thịt ba chỉ", "pork belly", "pork", "meat", ingredient.Nutrition{Calories: 518, Protein: 9, Carbs: 0, Fat: 53}},
	{"cá", "fish", "fish", "seafood", ingredient.Nutrition{Calories: 206, Protein: 22, Carbs: 0, Fat: 12}},
	{"tôm", "shrimp", "shrimp", "seafood", ingredient.Nutrition{Calories: 99, Protein: 24, Carbs: 0.2, Fat: 0.3}},
	{"mực", "squid", "squid", "seafood", ingredient.Nutrition{Calories: 92, Protein: 16, Carbs: 3, Fat: 1.4}},
	{"trứng gà", "egg", "egg", "dairy", ingredient.Nutrition{Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11}},
	{"đậu phụ", "tofu", "tofu", "protein", ingredient.Nutrition{Calories: 76, Protein: 8, Carbs: 1.9, Fat: 4.8}},
	{"gạo", "rice", "rice", "grain", ingredient.Nutrition{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}},
	{"bún", "rice vermicelli", "noodle", "grain", ingredient.Nutrition{Calories: 109, Protein: 0.9, Carbs: 25, Fat: 0.2}},
	{"phở", "rice noodle", "noodle", "grain", ingredient.Nutrition{Calories: 108, Protein: 1.8, Carbs: 25, Fat: 0.2}},
	{"mì", "wheat noodle", "noodle", "grain", ingredient.Nutrition{Calories: 138, Protein: 4.5, Carbs: 25, Fat: 2.1}},
	{"hành lá", "scallion", "onion", "vegetable", ingredient.Nutrition{Calories: 32, Protein: 1.8, Carbs: 7.3, Fat: 0.2}},
	{"hành tây", "onion", "onion", "vegetable", ingredient.Nutrition{Calories: 40, Protein: 1.1, Carbs: 9.3, Fat: 0.1}},
	{"tỏi", "garlic", "garlic", "condiment", ingredient.Nutrition{Calories: 149, Protein: 6.4, Carbs: 33, Fat: 0.5}},
	{"gừng", "ginger", "ginger", "condiment", ingredient.Nutrition{Calories: 80, Protein: 1.8, Carbs: 18, Fat: 0.8}},
	{"ớt", "chili", "chili", "condiment", ingredient.Nutrition{Calories: 40, Protein: 1.9, Carbs: 8.8, Fat: 0.4}},
	{"sả", "lemongrass", "lemongrass", "condiment", ingredient.Nutrition{Calories: 99, Protein: 1.8, Carbs: 25, Fat: 0.5}},
	{"rau muống", "water spinach", "leafy green", "vegetable", ingredient.Nutrition{Calories: 19, Protein: 2.6, Carbs: 3.1, Fat: 0.2}},
	{"cải xanh", "mustard greens", "leafy green", "vegetable", ingredient.Nutrition{Calories: 27, Protein: 2.9, Carbs: 4.7, Fat: 0.4}},
	{"cà chua", "tomato", "tomato", "vegetable", ingredient.Nutrition{Calories: 18, Protein: 0.9, Carbs: 3.9, Fat: 0.2}},
	{"cà rốt", "carrot", "carrot", "vegetable", ingredient.Nutrition{Calories: 41, Protein: 0.9, Carbs: 9.6, Fat: 0.2}},
	{"dưa chuột", "cucumber", "cucumber", "vegetable", ingredient.Nutrition{Calories: 15, Protein: 0.7, Carbs: 3.6, Fat: 0.1}},
	{"giá đỗ", "bean sprouts", "sprout", "vegetable", ingredient.Nutrition{Calories: 30, Protein: 3, Carbs: 5.9, Fat: 0.2}},
	{"nấm", "mushroom", "mushroom", "vegetable", ingredient.Nutrition{Calories: 22, Protein: 3.1, Carbs: 3.3, Fat: 0.3}},
	{"rau thơm", "herbs", "herb", "vegetable", ingredient.Nutrition{Calories: 23, Protein: 2.1, Carbs: 3.6, Fat: 0.5}},
	{"ngò rí", "cilantro", "herb", "vegetable", ingredient.Nutrition{Calories: 23, Protein: 2.1, Carbs: 3.7, Fat: 0.5}},
	{"nước mắm", "fish sauce", "sauce", "condiment", ingredient.Nutrition{Calories: 35, Protein: 5.1, Carbs: 3.6, Fat: 0}},
	{"nước tương", "soy sauce", "sauce", "condiment", ingredient.Nutrition{Calories: 53, Protein: 8.1, Carbs: 4.9, Fat: 0.6}},
	{"đường", "sugar", "sugar", "condiment", ingredient.Nutrition{Calories: 387, Protein: 0, Carbs: 100, Fat: 0}},
	{"muối", "salt", "salt", "condiment", ingredient.Nutrition{Calories: 0, Protein: 0, Carbs: 0, Fat: 0}},
	{"tiêu", "black pepper", "pepper", "condiment", ingredient.Nutrition{Calories: 251, Protein: 10, Carbs: 64, Fat: 3.3}},
	{"dầu ăn", "cooking oil", "oil", "condiment", ingredient.Nutrition{Calories: 884, Protein: 0, Carbs: 0, Fat: 100}},
	{"chanh", "lime", "lime", "fruit", ingredient.Nutrition{Calories: 30, Protein: 0.7, Carbs: 11, Fat: 0.2}},
	{"dừa", "coconut", "coconut", "fruit", ingredient.Nutrition{Calories: 354, Protein: 3.3, Carbs: 15, Fat: 33}},
	{"khoai tây", "potato", "potato", "vegetable", ingredient.Nutrition{Calories: 77, Protein: 2, Carbs: 17, Fat: 0.1}},
	{"đậu phộng", "peanut", "peanut", "protein", ingredient.Nutrition{Calories: 567, Protein: 26, Carbs: 16, Fat: 49}},
}

// Bootstrap seeds the dictionary with the staple translations. Inserts
// are conditional, so running it on every worker start is idempotent
// and never overwrites promoted entries.
func (d *Dictionary) Bootstrap(ctx context.Context) error {
	now := time.Now().UTC()
	inserted := 0
	for _, row := range bootstrapSeed {
		entry := DictionaryEntry{
			SourceText:       row.source,
			NormalizedSource: ingredient.Normalize(row.source),
			CanonicalEnglish: row.canonical,
			GeneralForm:      row.general,
			Category:         row.category,
			Nutrition:        row.nutrition,
			AddedBy:          SourceBootstrap,
			AddedAt:          now,
		}
		ok, err := d.InsertIfAbsent(ctx, entry)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	slog.Info("Dictionary bootstrap complete", "seeded", inserted, "total", len(bootstrapSeed))
	return nil
}
