package ingredient

// Nutrition holds macro values per 100g of an ingredient. Values are
// generative estimates, never scientifically derived; zero values mean
// "unknown" and are acceptable everywhere.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// IsZero reports whether no macro value is known.
func (n Nutrition) IsZero() bool {
	return n.Calories == 0 && n.Protein == 0 && n.Carbs == 0 && n.Fat == 0
}

// Add returns the sum of two nutrition values.
func (n Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
	}
}

// Scale returns the nutrition value multiplied by factor.
func (n Nutrition) Scale(factor float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
	}
}
