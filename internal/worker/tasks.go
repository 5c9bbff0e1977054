package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/monngon/bep/internal/cache"
	"github.com/monngon/bep/internal/ingredient"
)

// Task type constants
const (
	TypeGenerateSuggestion = "suggest:generate"
)

// TranslatedIngredient is one resolved ingredient carried in the job
// payload, so the worker never re-runs translation.
type TranslatedIngredient struct {
	OriginalText     string               `json:"original_text"`
	NormalizedSource string               `json:"normalized_source"`
	Canonical        string               `json:"canonical"`
	GeneralForm      string               `json:"general_form,omitempty"`
	Category         string               `json:"category,omitempty"`
	Nutrition        ingredient.Nutrition `json:"nutrition"`
}

// GenerateSuggestionPayload is the payload for suggestion generation tasks
type GenerateSuggestionPayload struct {
	JobID       string                 `json:"job_id"`
	UserID      string                 `json:"user_id"`
	Ingredients []TranslatedIngredient `json:"ingredients"`
	Settings    cache.RequestSettings  `json:"settings"`
	CacheKey    string                 `json:"cache_key"`
}

// NewGenerateSuggestionTask creates a new suggestion generation task
func NewGenerateSuggestionTask(payload GenerateSuggestionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateSuggestion, data), nil
}
