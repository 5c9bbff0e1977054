package suggest

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/monngon/bep/internal/errors"
	"github.com/monngon/bep/internal/metrics"
)

// FallbackProvider implements ChatProvider with fallback logic
type FallbackProvider struct {
	Primary   ChatProvider
	Secondary ChatProvider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(primary, secondary ChatProvider) *FallbackProvider {
	return &FallbackProvider{
		Primary:   primary,
		Secondary: secondary,
	}
}

// Chat tries the primary provider first, falls back to secondary on retryable errors
func (f *FallbackProvider) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	result, err := f.Primary.Chat(ctx, systemPrompt, userPrompt)
	if err == nil {
		return result, nil
	}

	providerErr := ClassifyError(err, "primary")

	if IsRetryableError(err) {
		slog.Info("Primary provider failed with retryable error, attempting fallback",
			"error_type", providerErr.Type,
			"error", err.Error())

		metrics.ProviderFallbackTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from_provider", providerErr.Provider),
			attribute.String("to_provider", "secondary"),
			attribute.String("reason", providerErr.Type),
		))

		result, fallbackErr := f.Secondary.Chat(ctx, systemPrompt, userPrompt)
		if fallbackErr == nil {
			slog.Info("Fallback provider succeeded",
				"primary_error_type", providerErr.Type)
			return result, nil
		}

		fallbackProviderErr := ClassifyError(fallbackErr, "secondary")
		slog.Error("Both primary and secondary providers failed",
			"primary_error_type", providerErr.Type,
			"primary_error", err.Error(),
			"fallback_error_type", fallbackProviderErr.Type,
			"fallback_error", fallbackErr.Error())

		return "", errors.NewInternalError(
			"both primary and secondary providers failed", err)
	}

	// Not a retryable error (e.g., 4xx), return original error
	slog.Info("Primary provider failed with non-retryable error, not attempting fallback",
		"error_type", providerErr.Type,
		"error", err.Error())

	return "", err
}
