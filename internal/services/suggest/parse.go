package suggest

import (
	"encoding/json"
	"strings"

	apperrors "github.com/monngon/bep/internal/errors"
)

// ParseGenerationResponse parses the backend's structured output.
// The compatibility envelope is preferred; a bare recipe list is
// accepted for backward compatibility with older prompt versions.
// Anything else fails with a generation parse error.
func ParseGenerationResponse(content string) (*GenerationResult, error) {
	content = stripCodeFence(content)

	// Envelope format: { "compatibility": {...}, "recipes": [...] }
	var envelope struct {
		Compatibility *Compatibility    `json:"compatibility"`
		Recipes       []GeneratedRecipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err == nil && len(envelope.Recipes) > 0 {
		result := &GenerationResult{
			Compatibility: envelope.Compatibility,
			Recipes:       envelope.Recipes,
		}
		if err := validateRecipes(result.Recipes); err != nil {
			return nil, err
		}
		return result, nil
	}

	// Legacy format: a bare JSON array of recipes.
	var bare []GeneratedRecipe
	if err := json.Unmarshal([]byte(content), &bare); err == nil && len(bare) > 0 {
		result := &GenerationResult{Recipes: bare}
		if err := validateRecipes(result.Recipes); err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, apperrors.NewGenerationParseError(
		"generation response matched neither the envelope nor the bare recipe list format", nil)
}

// stripCodeFence removes a surrounding Markdown code fence. Providers
// are asked for json_object output, but a model occasionally wraps the
// body in ```json anyway.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func validateRecipes(recipes []GeneratedRecipe) error {
	for _, r := range recipes {
		if r.Name == "" {
			return apperrors.NewGenerationParseError("generated recipe has no name", nil)
		}
		if len(r.Ingredients) == 0 {
			return apperrors.NewGenerationParseError(
				"generated recipe "+r.Name+" has no ingredients", nil)
		}
	}
	return nil
}
