// Package nutrition estimates per-100g nutrition for canonical
// ingredients, tiered the same way translation is: dictionary first,
// learned cache second, generative backend last. Estimation is
// best-effort and never returns an error to callers.
package nutrition

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/monngon/bep/internal/ingredient"
	"github.com/monngon/bep/internal/services/ai"
	"github.com/monngon/bep/internal/services/suggest"
	"github.com/monngon/bep/internal/store"
)

// DictionaryStore is the dictionary surface the estimator needs. The
// canonical index exists because many Vietnamese source strings map to
// one canonical ingredient.
type DictionaryStore interface {
	GetByCanonical(ctx context.Context, canonicalEnglish string) (*store.DictionaryEntry, error)
}

// LearnedStore is the learned cache surface the estimator needs.
type LearnedStore interface {
	GetByCanonical(ctx context.Context, canonicalEnglish string) (*store.LearnedEntry, error)
}

// Estimator resolves per-100g nutrition for a canonical ingredient name.
type Estimator struct {
	dictionary DictionaryStore
	learned    LearnedStore
	provider   suggest.ChatProvider
}

// New creates an estimator over the given stores and chat provider.
func New(dictionary DictionaryStore, learned LearnedStore, provider suggest.ChatProvider) *Estimator {
	return &Estimator{dictionary: dictionary, learned: learned, provider: provider}
}

// Estimate returns per-100g nutrition for a canonical name. Store and
// backend failures degrade to a zero value; nutrition must never block
// or fail a suggestion.
func (e *Estimator) Estimate(ctx context.Context, canonical string) ingredient.Nutrition {
	if canonical == "" {
		return ingredient.Nutrition{}
	}

	entry, err := e.dictionary.GetByCanonical(ctx, canonical)
	if err != nil {
		slog.Warn("Dictionary nutrition lookup failed", "canonical", canonical, "error", err)
	} else if entry != nil && !entry.Nutrition.IsZero() {
		return entry.Nutrition
	}

	learned, err := e.learned.GetByCanonical(ctx, canonical)
	if err != nil {
		slog.Warn("Learned cache nutrition lookup failed", "canonical", canonical, "error", err)
	} else if learned != nil && !learned.Nutrition.IsZero() {
		return learned.Nutrition
	}

	return e.estimateWithAI(ctx, canonical)
}

func (e *Estimator) estimateWithAI(ctx context.Context, canonical string) ingredient.Nutrition {
	content, err := e.provider.Chat(ctx, ai.BuildNutritionPrompt(), ai.FormatNutritionRequest(canonical))
	if err != nil {
		slog.Warn("Nutrition estimation call failed", "canonical", canonical, "error", err)
		return ingredient.Nutrition{}
	}

	var parsed ingredient.Nutrition
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		slog.Warn("Nutrition estimation response malformed", "canonical", canonical, "error", err)
		return ingredient.Nutrition{}
	}
	return parsed
}
