package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Quantize clamps and snaps request settings into the discrete values
// allowed to participate in a cache key. Unknown meal types become
// "none"; a requested ceiling is snapped up to the next allowed value
// so a 40-minute budget shares keys with 45.
func Quantize(s RequestSettings) QuantizedSettings {
	q := QuantizedSettings{
		Servings:       s.Servings,
		MealType:       MealTypeNone,
		MaxCookingTime: CookingTimes[len(CookingTimes)-1],
	}

	if q.Servings < MinServings {
		q.Servings = MinServings
	}
	if q.Servings > MaxServings {
		q.Servings = MaxServings
	}

	for _, mt := range MealTypes {
		if strings.EqualFold(s.MealType, mt) {
			q.MealType = mt
			break
		}
	}

	if s.MaxCookingTime > 0 {
		for _, t := range CookingTimes {
			if s.MaxCookingTime <= t {
				q.MaxCookingTime = t
				break
			}
		}
	}

	return q
}

// GenerateKey derives the deterministic cache key for an ingredient set
// and quantized settings. The ingredient order never matters:
//
//	GenerateKey([hanh-la thit-ga], s) == GenerateKey([thit-ga hanh-la], s)
//
// Example: "hanh-la|thit-ga|s2|none|t30".
func GenerateKey(ingredients []string, q QuantizedSettings) string {
	sorted := make([]string, len(ingredients))
	copy(sorted, ingredients)
	sort.Strings(sorted)

	var b strings.Builder
	for _, ing := range sorted {
		b.WriteString(ing)
		b.WriteByte('|')
	}
	fmt.Fprintf(&b, "s%d|%s|t%d", q.Servings, q.MealType, q.MaxCookingTime)
	return b.String()
}
