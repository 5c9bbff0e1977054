package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSuggestionConfig(t *testing.T) {
	// Create a temporary config file for testing
	configContent := `suggestion:
  provider: openai
  fallback_enabled: false
  fallback_provider: groq
  daily_request_limit: 50
  generation_timeout_seconds: 90`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Test loading config from YAML
	cfg := &Config{}
	err = cfg.LoadFromYAML(configPath)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	// Verify suggestion config was loaded
	if cfg.Suggestion.Provider != "openai" {
		t.Errorf("Expected provider to be 'openai', got '%s'", cfg.Suggestion.Provider)
	}
	if cfg.Suggestion.FallbackEnabled != false {
		t.Errorf("Expected fallback_enabled to be false, got %v", cfg.Suggestion.FallbackEnabled)
	}
	if cfg.Suggestion.FallbackProvider != "groq" {
		t.Errorf("Expected fallback_provider to be 'groq', got '%s'", cfg.Suggestion.FallbackProvider)
	}
	if cfg.Suggestion.DailyRequestLimit != 50 {
		t.Errorf("Expected daily_request_limit to be 50, got %d", cfg.Suggestion.DailyRequestLimit)
	}
	if cfg.Suggestion.GenerationTimeout != 90 {
		t.Errorf("Expected generation_timeout_seconds to be 90, got %d", cfg.Suggestion.GenerationTimeout)
	}
}

func TestLoadSuggestionConfigPartial(t *testing.T) {
	// Test with partial config (only provider specified)
	configContent := `suggestion:
  provider: custom-provider`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config_partial.yaml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	cfg.SetSuggestionDefaults() // Set defaults first
	err = cfg.LoadFromYAML(configPath)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	// Verify provider was loaded but defaults applied for other fields
	if cfg.Suggestion.Provider != "custom-provider" {
		t.Errorf("Expected provider to be 'custom-provider', got '%s'", cfg.Suggestion.Provider)
	}
	if cfg.Suggestion.FallbackEnabled != true {
		t.Errorf("Expected fallback_enabled to be true (default), got %v", cfg.Suggestion.FallbackEnabled)
	}
	if cfg.Suggestion.FallbackProvider != "openai" {
		t.Errorf("Expected fallback_provider to be 'openai' (default), got '%s'", cfg.Suggestion.FallbackProvider)
	}
	if cfg.Suggestion.DailyRequestLimit != 20 {
		t.Errorf("Expected daily_request_limit to be 20 (default), got %d", cfg.Suggestion.DailyRequestLimit)
	}
}

func TestLoadSuggestionConfigDefaults(t *testing.T) {
	// Test without any YAML file
	cfg := &Config{}
	cfg.SetSuggestionDefaults()

	// Verify defaults
	if cfg.Suggestion.Provider != "groq" {
		t.Errorf("Expected provider to be 'groq' (default), got '%s'", cfg.Suggestion.Provider)
	}
	if cfg.Suggestion.FallbackEnabled != true {
		t.Errorf("Expected fallback_enabled to be true (default), got %v", cfg.Suggestion.FallbackEnabled)
	}
	if cfg.Suggestion.FallbackProvider != "openai" {
		t.Errorf("Expected fallback_provider to be 'openai' (default), got '%s'", cfg.Suggestion.FallbackProvider)
	}
	if cfg.Suggestion.GenerationTimeout != 60 {
		t.Errorf("Expected generation_timeout_seconds to be 60 (default), got %d", cfg.Suggestion.GenerationTimeout)
	}
}

func TestLoadSuggestionConfigFileNotFound(t *testing.T) {
	// Test with non-existent file
	cfg := &Config{}
	err := cfg.LoadFromYAML("non_existent_file.yaml")

	// Should not return an error for non-existent files
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}
}

func TestLoadSuggestionConfigInvalidYAML(t *testing.T) {
	// Test with invalid YAML content
	configContent := `suggestion:
  provider: openai
  invalid_yaml: [unclosed`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config_invalid.yaml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	err = cfg.LoadFromYAML(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}
