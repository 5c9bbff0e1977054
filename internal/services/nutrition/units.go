package nutrition

import "strings"

// gramsPerUnit converts recipe measurements to grams. Volume units
// assume water-like density, count units assume a typical piece; this
// is a scaling aid, not a lab scale.
var gramsPerUnit = map[string]float64{
	"g":     1,
	"gram":  1,
	"grams": 1,
	"mg":    0.001,
	"kg":    1000,
	"ml":    1,
	"l":     1000,
	"tsp":   5,
	"tbsp":  15,
	"cup":   240,
	"piece": 50,
	"whole": 100,
	"slice": 20,
	"clove": 5,
	"stalk": 40,
	"sprig": 2,
	"pinch": 0.5,
	"bunch": 100,
	"leaf":  1,
}

// GramsFor converts an amount in the given unit to grams. Unknown
// units report ok=false so the caller can decide to skip the line.
func GramsFor(amount float64, unit string) (float64, bool) {
	if amount <= 0 {
		return 0, false
	}
	factor, ok := gramsPerUnit[normalizeUnit(unit)]
	if !ok {
		return 0, false
	}
	return amount * factor, true
}

func normalizeUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	unit = strings.TrimSuffix(unit, ".")
	// Singularize the count units ("pieces" -> "piece").
	if len(unit) > 2 && strings.HasSuffix(unit, "s") && unit != "grams" {
		if _, ok := gramsPerUnit[strings.TrimSuffix(unit, "s")]; ok {
			return strings.TrimSuffix(unit, "s")
		}
	}
	return unit
}
