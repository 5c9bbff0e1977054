package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("bep/business")

	// Suggestion request metrics
	SuggestRequestsTotal   metric.Int64Counter
	SuggestRequestDuration metric.Float64Histogram

	// Cache metrics
	CacheLookupsTotal metric.Int64Counter

	// Translation metrics
	TranslationsTotal metric.Int64Counter
	PromotionsTotal   metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// AI metrics
	AIGenerationDuration metric.Float64Histogram

	// Provider fallback metrics
	ProviderFallbackTotal metric.Int64Counter

	// Rate limit metrics
	RateLimitRejectionsTotal metric.Int64Counter
)

func Init() error {
	var err error

	SuggestRequestsTotal, err = meter.Int64Counter(
		"suggest.requests.total",
		metric.WithDescription("Total number of suggestion requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	SuggestRequestDuration, err = meter.Float64Histogram(
		"suggest.request.duration",
		metric.WithDescription("Duration of the synchronous suggestion path"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2, 5),
	)
	if err != nil {
		return err
	}

	CacheLookupsTotal, err = meter.Int64Counter(
		"suggest.cache.lookups.total",
		metric.WithDescription("Suggestion cache lookups by outcome (exact, partial, miss)"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	TranslationsTotal, err = meter.Int64Counter(
		"ingredient.translations.total",
		metric.WithDescription("Ingredient translations by source (dictionary, cache, ai)"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	PromotionsTotal, err = meter.Int64Counter(
		"ingredient.promotions.total",
		metric.WithDescription("Learned cache entries promoted to the dictionary"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	AIGenerationDuration, err = meter.Float64Histogram(
		"ai.generation.duration",
		metric.WithDescription("Duration of AI suggestion generation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ProviderFallbackTotal, err = meter.Int64Counter(
		"ai.provider.fallback.total",
		metric.WithDescription("Provider fallback activations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	RateLimitRejectionsTotal, err = meter.Int64Counter(
		"ratelimit.rejections.total",
		metric.WithDescription("Requests rejected by the daily rate limiter"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
