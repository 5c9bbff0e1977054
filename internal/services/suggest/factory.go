package suggest

import (
	"github.com/monngon/bep/internal/config"
)

// NewProvider creates a new chat provider based on the configuration.
// It can optionally wrap the provider in a fallback wrapper if enabled.
func NewProvider(cfg config.SuggestionConfig, groqKey, cerebrasKey, openAIKey string) ChatProvider {
	var primary ChatProvider

	switch cfg.Provider {
	case "cerebras":
		primary = NewCerebrasProvider(cerebrasKey)
	case "openai":
		primary = NewOpenAIProvider(openAIKey)
	default:
		// Default to groq
		primary = NewGroqProvider(groqKey)
	}

	if cfg.FallbackEnabled {
		var secondary ChatProvider

		switch cfg.FallbackProvider {
		case "cerebras":
			secondary = NewCerebrasProvider(cerebrasKey)
		case "openai":
			secondary = NewOpenAIProvider(openAIKey)
		default:
			secondary = NewGroqProvider(groqKey)
		}

		return NewFallbackProvider(primary, secondary)
	}

	return primary
}
