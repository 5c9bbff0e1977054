package cache

import (
	"testing"
)

func TestGenerateKeyOrderInvariant(t *testing.T) {
	q := QuantizedSettings{Servings: 2, MealType: MealTypeNone, MaxCookingTime: 30}

	a := GenerateKey([]string{"thit-ga", "hanh-la"}, q)
	b := GenerateKey([]string{"hanh-la", "thit-ga"}, q)

	if a != b {
		t.Errorf("expected order-invariant keys, got %q and %q", a, b)
	}
	if a != "hanh-la|thit-ga|s2|none|t30" {
		t.Errorf("unexpected key %q", a)
	}
}

func TestGenerateKeyDoesNotMutateInput(t *testing.T) {
	q := QuantizedSettings{Servings: 1, MealType: "dinner", MaxCookingTime: 60}
	ingredients := []string{"scallion", "chicken", "garlic"}

	GenerateKey(ingredients, q)

	if ingredients[0] != "scallion" || ingredients[1] != "chicken" {
		t.Errorf("input slice was reordered: %v", ingredients)
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   RequestSettings
		want QuantizedSettings
	}{
		{
			name: "passthrough of allowed values",
			in:   RequestSettings{Servings: 2, MealType: "dinner", MaxCookingTime: 30},
			want: QuantizedSettings{Servings: 2, MealType: "dinner", MaxCookingTime: 30},
		},
		{
			name: "time snapped up to next allowed value",
			in:   RequestSettings{Servings: 2, MealType: "none", MaxCookingTime: 40},
			want: QuantizedSettings{Servings: 2, MealType: "none", MaxCookingTime: 45},
		},
		{
			name: "time above ceiling clamps to ceiling",
			in:   RequestSettings{Servings: 2, MealType: "none", MaxCookingTime: 500},
			want: QuantizedSettings{Servings: 2, MealType: "none", MaxCookingTime: 120},
		},
		{
			name: "zero time defaults to ceiling",
			in:   RequestSettings{Servings: 3, MealType: "lunch"},
			want: QuantizedSettings{Servings: 3, MealType: "lunch", MaxCookingTime: 120},
		},
		{
			name: "unknown meal type becomes none",
			in:   RequestSettings{Servings: 2, MealType: "brunch", MaxCookingTime: 15},
			want: QuantizedSettings{Servings: 2, MealType: "none", MaxCookingTime: 15},
		},
		{
			name: "meal type is case insensitive",
			in:   RequestSettings{Servings: 2, MealType: "Dinner", MaxCookingTime: 15},
			want: QuantizedSettings{Servings: 2, MealType: "dinner", MaxCookingTime: 15},
		},
		{
			name: "servings clamped to range",
			in:   RequestSettings{Servings: 9, MealType: "none", MaxCookingTime: 15},
			want: QuantizedSettings{Servings: 5, MealType: "none", MaxCookingTime: 15},
		},
		{
			name: "zero servings clamps to minimum",
			in:   RequestSettings{MealType: "none", MaxCookingTime: 15},
			want: QuantizedSettings{Servings: 1, MealType: "none", MaxCookingTime: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantize(tt.in)
			if got != tt.want {
				t.Errorf("Quantize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
