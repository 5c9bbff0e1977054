// Package suggest holds the generative backend: the chat provider
// implementations with fallback, and the parsers for their structured
// output. Translation, nutrition and recipe generation all go through
// the same ChatProvider interface.
package suggest

import "context"

// ProviderType represents the type of AI provider
type ProviderType string

const (
	ProviderGroq     ProviderType = "groq"
	ProviderCerebras ProviderType = "cerebras"
	ProviderOpenAI   ProviderType = "openai"
)

// ChatProvider defines the interface for JSON-mode chat completion
// providers. The returned string is the raw message content; callers
// own parsing.
type ChatProvider interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
