// Package translate resolves Vietnamese ingredient names to canonical
// English forms through a tiered resolver chain: permanent dictionary,
// learned cache, then the generative backend.
package translate

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/monngon/bep/internal/errors"
	"github.com/monngon/bep/internal/ingredient"
	"github.com/monngon/bep/internal/metrics"
	"github.com/monngon/bep/internal/services/ai"
	"github.com/monngon/bep/internal/services/suggest"
	"github.com/monngon/bep/internal/store"
	"github.com/monngon/bep/internal/utils"
)

// PromotionThreshold is the usage count at which a learned entry moves
// into the permanent dictionary.
const PromotionThreshold = 100

// Source identifies which tier resolved a translation.
type Source string

const (
	SourceDictionary Source = "dictionary"
	SourceCache      Source = "cache"
	SourceAI         Source = "ai"
)

// Resolution is the outcome of translating one ingredient.
type Resolution struct {
	OriginalText     string
	NormalizedSource string
	Canonical        string
	GeneralForm      string
	Category         string
	Nutrition        ingredient.Nutrition
	Source           Source
}

// DictionaryStore is the dictionary surface the translator needs.
type DictionaryStore interface {
	Get(ctx context.Context, normalizedSource string) (*store.DictionaryEntry, error)
	InsertIfAbsent(ctx context.Context, e store.DictionaryEntry) (bool, error)
}

// LearnedStore is the learned cache surface the translator needs.
type LearnedStore interface {
	Get(ctx context.Context, slug string) (*store.LearnedEntry, error)
	Create(ctx context.Context, entry store.LearnedEntry) (bool, error)
	Touch(ctx context.Context, slug string) (int64, error)
	Delete(ctx context.Context, slug, canonicalEnglish string) error
}

// NutritionEstimator fills in per-100g nutrition for a canonical name.
type NutritionEstimator interface {
	Estimate(ctx context.Context, canonical string) ingredient.Nutrition
}

// Translator resolves ingredient names tier by tier.
type Translator struct {
	dictionary DictionaryStore
	learned    LearnedStore
	provider   suggest.ChatProvider
	nutrition  NutritionEstimator
	now        func() time.Time

	// touchTimeout bounds the fire-and-forget usage bump so a slow
	// store cannot leak goroutines.
	touchTimeout time.Duration
}

// New creates a translator over the given stores and chat provider.
func New(dictionary DictionaryStore, learned LearnedStore, provider suggest.ChatProvider, nutrition NutritionEstimator) *Translator {
	return &Translator{
		dictionary:   dictionary,
		learned:      learned,
		provider:     provider,
		nutrition:    nutrition,
		now:          time.Now,
		touchTimeout: 5 * time.Second,
	}
}

// Translate resolves one raw ingredient text. A dictionary hit returns
// without any mutation; a learned hit bumps its usage counter off the
// request path; everything else costs one generation call and seeds a
// new learned entry.
func (t *Translator) Translate(ctx context.Context, originalText string) (*Resolution, error) {
	slug := ingredient.Normalize(originalText)
	if slug == "" {
		return nil, apperrors.NewValidationError(
			"ingredient text is empty after normalization", "EMPTY_INGREDIENT",
			"Provide a non-empty ingredient name.")
	}

	entry, err := t.dictionary.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		t.recordTranslation(ctx, SourceDictionary)
		return &Resolution{
			OriginalText:     originalText,
			NormalizedSource: slug,
			Canonical:        entry.CanonicalEnglish,
			GeneralForm:      entry.GeneralForm,
			Category:         entry.Category,
			Nutrition:        entry.Nutrition,
			Source:           SourceDictionary,
		}, nil
	}

	learned, err := t.learned.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if learned != nil {
		t.recordTranslation(ctx, SourceCache)
		go t.touchAndMaybePromote(slug, *learned)
		return &Resolution{
			OriginalText:     originalText,
			NormalizedSource: slug,
			Canonical:        learned.CanonicalEnglish,
			GeneralForm:      learned.GeneralForm,
			Category:         learned.Category,
			Nutrition:        learned.Nutrition,
			Source:           SourceCache,
		}, nil
	}

	return t.resolveWithAI(ctx, originalText, slug)
}

func (t *Translator) resolveWithAI(ctx context.Context, originalText, slug string) (*Resolution, error) {
	content, err := utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		return t.provider.Chat(ctx, ai.BuildTranslationPrompt(), ai.FormatTranslationRequest(originalText))
	}, utils.TranslationRetryConfig())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Valid       bool   `json:"valid"`
		Canonical   string `json:"canonical"`
		GeneralForm string `json:"general_form"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperrors.NewGenerationParseError(
			"translation response is not valid JSON", err)
	}
	if !parsed.Valid || parsed.Canonical == "" {
		return nil, apperrors.NewUnknownIngredientError(originalText)
	}

	t.recordTranslation(ctx, SourceAI)

	resolution := &Resolution{
		OriginalText:     originalText,
		NormalizedSource: slug,
		Canonical:        parsed.Canonical,
		GeneralForm:      parsed.GeneralForm,
		Category:         parsed.Category,
		Nutrition:        t.nutrition.Estimate(ctx, parsed.Canonical),
		Source:           SourceAI,
	}

	now := t.now().UTC()
	created, err := t.learned.Create(ctx, store.LearnedEntry{
		SourceText:       originalText,
		NormalizedSource: slug,
		CanonicalEnglish: resolution.Canonical,
		GeneralForm:      resolution.GeneralForm,
		Category:         resolution.Category,
		Nutrition:        resolution.Nutrition,
		AddedBy:          store.SourceAI,
		AddedAt:          now,
		UsageCount:       1,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(store.LearnedTTL),
	})
	if err != nil {
		// The translation itself succeeded; losing the cache write only
		// costs a future generation call.
		slog.Warn("Failed to persist learned translation", "slug", slug, "error", err)
	} else if !created {
		// A concurrent translator won the conditional write. Proceed
		// with our own result for this request.
		slog.Debug("Learned entry already created concurrently", "slug", slug)
	}

	return resolution, nil
}

// touchAndMaybePromote runs off the request path: it bumps the usage
// counter and, when the count crosses the threshold, moves the entry
// into the dictionary. All failures here are logged and swallowed.
func (t *Translator) touchAndMaybePromote(slug string, entry store.LearnedEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), t.touchTimeout)
	defer cancel()

	count, err := t.learned.Touch(ctx, slug)
	if err != nil {
		slog.Warn("Failed to bump learned entry usage", "slug", slug, "error", err)
		return
	}
	if count != PromotionThreshold {
		return
	}

	entry.UsageCount = count
	promoted := entry.ToDictionary()
	inserted, err := t.dictionary.InsertIfAbsent(ctx, promoted)
	if err != nil {
		slog.Warn("Failed to promote learned entry", "slug", slug, "error", err)
		return
	}
	if !inserted {
		slog.Debug("Learned entry concurrently promoted", "slug", slug)
	}

	if err := t.learned.Delete(ctx, slug, entry.CanonicalEnglish); err != nil {
		slog.Warn("Failed to remove promoted learned entry", "slug", slug, "error", err)
		return
	}

	metrics.PromotionsTotal.Add(ctx, 1)
	slog.Info("Promoted learned translation to dictionary",
		"slug", slug, "canonical", entry.CanonicalEnglish, "usage_count", count)
}

func (t *Translator) recordTranslation(ctx context.Context, source Source) {
	metrics.TranslationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(source)),
	))
}
