package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/monngon/bep/internal/cache"
	apperrors "github.com/monngon/bep/internal/errors"
	"github.com/monngon/bep/internal/ingredient"
	"github.com/monngon/bep/internal/metrics"
	"github.com/monngon/bep/internal/services/ai"
	"github.com/monngon/bep/internal/services/nutrition"
	"github.com/monngon/bep/internal/services/suggest"
	"github.com/monngon/bep/internal/store"
)

// JobStore is the job record surface the processor needs.
type JobStore interface {
	MarkProcessing(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, result *store.JobResult, warning, compatibilityNotes string) error
	Fail(ctx context.Context, jobID string, cause string) error
}

// DictionaryStore is the dictionary surface the processor needs.
type DictionaryStore interface {
	Get(ctx context.Context, normalizedSource string) (*store.DictionaryEntry, error)
}

// LearnedStore is the learned cache surface the processor needs.
type LearnedStore interface {
	Get(ctx context.Context, slug string) (*store.LearnedEntry, error)
	Create(ctx context.Context, entry store.LearnedEntry) (bool, error)
}

// NutritionEstimator fills in per-100g nutrition for a canonical name.
type NutritionEstimator interface {
	Estimate(ctx context.Context, canonical string) ingredient.Nutrition
}

// SuggestionProcessor consumes generation jobs: it calls the backend,
// computes nutrition, persists the result under a key derived from the
// ingredients the recipe actually uses, learns unseen ingredients, and
// writes the job's terminal state.
type SuggestionProcessor struct {
	jobs              JobStore
	cacheStore        cache.Store
	dictionary        DictionaryStore
	learned           LearnedStore
	provider          suggest.ChatProvider
	estimator         NutritionEstimator
	generationTimeout time.Duration
	metrics           *WorkerMetrics
	now               func() time.Time
}

func NewSuggestionProcessor(
	jobs JobStore,
	cacheStore cache.Store,
	dictionary DictionaryStore,
	learned LearnedStore,
	provider suggest.ChatProvider,
	estimator NutritionEstimator,
	generationTimeout time.Duration,
	workerMetrics *WorkerMetrics,
) *SuggestionProcessor {
	return &SuggestionProcessor{
		jobs:              jobs,
		cacheStore:        cacheStore,
		dictionary:        dictionary,
		learned:           learned,
		provider:          provider,
		estimator:         estimator,
		generationTimeout: generationTimeout,
		metrics:           workerMetrics,
		now:               time.Now,
	}
}

// HandleGenerateSuggestion processes one generation job. Store failures
// return an error so asynq re-delivers; generation failures (timeout,
// unparseable output) are terminal and write the job's failed state.
func (p *SuggestionProcessor) HandleGenerateSuggestion(ctx context.Context, t *asynq.Task) error {
	startTime := time.Now()

	var payload GenerateSuggestionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	jobID := payload.JobID
	slog.Info("Processing suggestion job", "job_id", jobID, "cache_key", payload.CacheKey,
		"ingredients", len(payload.Ingredients))

	if err := p.jobs.MarkProcessing(ctx, jobID); err != nil {
		// Re-delivery after a crash may find the job already terminal;
		// a missing record is not worth retrying the whole generation.
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound {
			slog.Warn("Job record missing, dropping task", "job_id", jobID)
			return nil
		}
		return err
	}

	result, err := p.generate(ctx, payload)
	if err != nil {
		return p.failJob(ctx, jobID, startTime, err)
	}

	recipe := result.Recipes[0]
	suggestion := p.buildSuggestion(ctx, recipe, payload)

	derivedKey, slugs := p.deriveCacheKey(recipe, payload.Settings)
	entry := &cache.Entry{
		CacheKey:    derivedKey,
		Suggestions: []cache.Suggestion{suggestion},
		Settings:    payload.Settings,
		Ingredients: slugs,
	}
	if err := p.cacheStore.Put(ctx, entry); err != nil {
		return p.failJob(ctx, jobID, startTime, err)
	}

	p.learnUnseenIngredients(ctx, recipe)

	warning, notes := p.buildWarning(recipe, payload.Settings, result.Compatibility)

	jobResult := &store.JobResult{
		CacheKey:    derivedKey,
		Suggestions: entry.Suggestions,
	}
	if err := p.jobs.Complete(ctx, jobID, jobResult, warning, notes); err != nil {
		return err
	}

	duration := time.Since(startTime).Seconds()
	p.metrics.RecordJob(ctx, TypeGenerateSuggestion, "completed", duration)
	metrics.AIGenerationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("outcome", "completed"),
	))
	slog.Info("Suggestion job completed", "job_id", jobID, "derived_key", derivedKey,
		"warning", warning != "")
	return nil
}

// generate runs the bounded backend call and parses its output.
func (p *SuggestionProcessor) generate(ctx context.Context, payload GenerateSuggestionPayload) (*suggest.GenerationResult, error) {
	lines := make([]ai.IngredientLine, 0, len(payload.Ingredients))
	for _, ing := range payload.Ingredients {
		lines = append(lines, ai.IngredientLine{
			Canonical: ing.Canonical,
			Display:   ing.OriginalText,
		})
	}

	q := cache.Quantize(payload.Settings)
	userPrompt := ai.FormatSuggestionRequest(ai.SuggestionRequest{
		Ingredients:             lines,
		Servings:                q.Servings,
		MealType:                q.MealType,
		MaxCookingTime:          q.MaxCookingTime,
		DislikedIngredients:     payload.Settings.DislikedIngredients,
		SkillLevel:              payload.Settings.SkillLevel,
		PreferredCookingMethods: payload.Settings.PreferredCookingMethods,
	})

	genCtx, cancel := context.WithTimeout(ctx, p.generationTimeout)
	defer cancel()

	content, err := p.provider.Chat(genCtx, ai.BuildSuggestionPrompt(), userPrompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || genCtx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewGenerationTimeoutError(err)
		}
		return nil, err
	}

	return suggest.ParseGenerationResponse(content)
}

// buildSuggestion maps a generated recipe into the cached form and
// computes per-serving nutrition by summing each ingredient line.
func (p *SuggestionProcessor) buildSuggestion(ctx context.Context, recipe suggest.GeneratedRecipe, payload GenerateSuggestionPayload) cache.Suggestion {
	servings := recipe.Servings
	if servings <= 0 {
		servings = cache.Quantize(payload.Settings).Servings
	}

	// Nutrition from the payload saves repeated estimator round trips
	// for ingredients the translator already resolved.
	known := make(map[string]ingredient.Nutrition, len(payload.Ingredients))
	for _, ing := range payload.Ingredients {
		known[ing.Canonical] = ing.Nutrition
	}

	var total ingredient.Nutrition
	ingredients := make([]cache.SuggestionIngredient, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		ingredients = append(ingredients, cache.SuggestionIngredient{
			CanonicalName: line.CanonicalName,
			DisplayName:   line.DisplayName,
			Amount:        line.Amount,
			Unit:          line.Unit,
			Importance:    line.Importance,
		})

		grams, ok := nutrition.GramsFor(line.Amount, line.Unit)
		if !ok {
			slog.Warn("Skipping nutrition for unconvertible unit",
				"ingredient", line.CanonicalName, "unit", line.Unit)
			continue
		}

		per100, found := known[line.CanonicalName]
		if !found || per100.IsZero() {
			per100 = p.estimator.Estimate(ctx, line.CanonicalName)
		}
		if per100.IsZero() {
			per100 = nutrition.CategoryFallback(line.CanonicalName, "")
		}
		total = total.Add(per100.Scale(grams / 100))
	}

	return cache.Suggestion{
		Name:                recipe.Name,
		Description:         recipe.Description,
		Ingredients:         ingredients,
		Steps:               recipe.Steps,
		CookingTimeMinutes:  recipe.CookingTimeMinutes,
		Difficulty:          recipe.Difficulty,
		Servings:            servings,
		NutritionPerServing: total.Scale(1 / float64(servings)),
	}
}

// deriveCacheKey recomputes the cache key from the ingredient set the
// recipe actually uses, not the original request's. The backend may
// use a subset or substitute a near-equivalent, and caching under the
// real set is what lets later requests for exactly those ingredients
// hit directly.
func (p *SuggestionProcessor) deriveCacheKey(recipe suggest.GeneratedRecipe, settings cache.RequestSettings) (string, []string) {
	seen := make(map[string]struct{}, len(recipe.Ingredients))
	slugs := make([]string, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		slug := ingredientSlug(line)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	return cache.GenerateKey(slugs, cache.Quantize(settings)), slugs
}

// ingredientSlug keys a recipe line the same way inbound requests are
// keyed: by the normalized source-language name when the recipe
// supplied one.
func ingredientSlug(line suggest.GeneratedIngredient) string {
	if line.DisplayName != "" {
		if slug := ingredient.Normalize(line.DisplayName); slug != "" {
			return slug
		}
	}
	return ingredient.Normalize(line.CanonicalName)
}

// learnUnseenIngredients persists a learned entry for every recipe
// ingredient with a source-language name that neither store knows yet,
// so future requests resolve it without a generation call. Failures
// here never fail the job.
func (p *SuggestionProcessor) learnUnseenIngredients(ctx context.Context, recipe suggest.GeneratedRecipe) {
	now := p.now().UTC()
	for _, line := range recipe.Ingredients {
		if line.DisplayName == "" || line.CanonicalName == "" {
			continue
		}
		slug := ingredient.Normalize(line.DisplayName)
		if slug == "" {
			continue
		}

		dictEntry, err := p.dictionary.Get(ctx, slug)
		if err != nil {
			slog.Warn("Dictionary check failed while learning", "slug", slug, "error", err)
			continue
		}
		if dictEntry != nil {
			continue
		}

		learnedEntry, err := p.learned.Get(ctx, slug)
		if err != nil {
			slog.Warn("Learned cache check failed while learning", "slug", slug, "error", err)
			continue
		}
		if learnedEntry != nil {
			continue
		}

		created, err := p.learned.Create(ctx, store.LearnedEntry{
			SourceText:       line.DisplayName,
			NormalizedSource: slug,
			CanonicalEnglish: line.CanonicalName,
			Nutrition:        p.estimator.Estimate(ctx, line.CanonicalName),
			AddedBy:          store.SourceAI,
			AddedAt:          now,
			UsageCount:       1,
			LastUsedAt:       now,
			ExpiresAt:        now.Add(store.LearnedTTL),
		})
		if err != nil {
			slog.Warn("Failed to learn ingredient", "slug", slug, "error", err)
			continue
		}
		if created {
			slog.Info("Learned new ingredient from recipe",
				"slug", slug, "canonical", line.CanonicalName)
		}
	}
}

// buildWarning composes the non-fatal warning for a completed job:
// cooking time over the requested ceiling, or requested ingredients
// the backend excluded as incompatible.
func (p *SuggestionProcessor) buildWarning(recipe suggest.GeneratedRecipe, settings cache.RequestSettings, compat *suggest.Compatibility) (string, string) {
	var parts []string

	q := cache.Quantize(settings)
	if recipe.CookingTimeMinutes > q.MaxCookingTime {
		parts = append(parts, fmt.Sprintf(
			"The recipe takes %d minutes, over the requested %d-minute limit.",
			recipe.CookingTimeMinutes, q.MaxCookingTime))
	}

	var notes string
	if compat != nil && len(compat.Incompatible) > 0 {
		names := make([]string, 0, len(compat.Incompatible))
		for _, inc := range compat.Incompatible {
			names = append(names, inc.Name)
		}
		parts = append(parts, fmt.Sprintf(
			"Excluded incompatible ingredients: %s.", strings.Join(names, ", ")))
		notes = compat.Explanation
	}

	return strings.Join(parts, " "), notes
}

// failJob writes the terminal failed state for generation-level
// failures and swallows the original error so the queue does not
// re-deliver a job that already reached a terminal state.
func (p *SuggestionProcessor) failJob(ctx context.Context, jobID string, startTime time.Time, cause error) error {
	var appErr *apperrors.AppError
	if errors.As(cause, &appErr) && appErr.Type == apperrors.ErrorTypeStoreUnavailable {
		// Transient; let asynq re-deliver.
		return cause
	}

	slog.Error("Suggestion job failed", "job_id", jobID, "error", cause)
	if err := p.jobs.Fail(ctx, jobID, cause.Error()); err != nil {
		return err
	}

	p.metrics.RecordJob(ctx, TypeGenerateSuggestion, "failed", time.Since(startTime).Seconds())
	return nil
}
