package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	DatabaseURL string

	RedisURL string

	AuthJWTSecret string
	AuthIssuer    string

	GroqKey     string
	CerebrasKey string
	OpenAIKey   string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Suggestion SuggestionConfig
}

// SuggestionConfig selects the generation provider and tunes the
// suggestion engine. Loaded from the `suggestion:` YAML section.
type SuggestionConfig struct {
	Provider          string `yaml:"provider"`
	FallbackEnabled   bool   `yaml:"fallback_enabled"`
	FallbackProvider  string `yaml:"fallback_provider"`
	DailyRequestLimit int    `yaml:"daily_request_limit"`
	GenerationTimeout int    `yaml:"generation_timeout_seconds"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		AuthJWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
		AuthIssuer:               os.Getenv("AUTH_ISSUER"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		CerebrasKey:              os.Getenv("CEREBRAS_API_KEY"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Env override for the daily limit, handy in staging
	if v := os.Getenv("DAILY_REQUEST_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DAILY_REQUEST_LIMIT: %w", err)
		}
		cfg.Suggestion.DailyRequestLimit = limit
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "monngon-bep"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.SetSuggestionDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Suggestion SuggestionConfig `yaml:"suggestion"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Suggestion.Provider != "" {
		c.Suggestion.Provider = yamlConfig.Suggestion.Provider
	}
	if yamlConfig.Suggestion.FallbackEnabled {
		c.Suggestion.FallbackEnabled = yamlConfig.Suggestion.FallbackEnabled
	}
	if yamlConfig.Suggestion.FallbackProvider != "" {
		c.Suggestion.FallbackProvider = yamlConfig.Suggestion.FallbackProvider
	}
	if yamlConfig.Suggestion.DailyRequestLimit > 0 {
		c.Suggestion.DailyRequestLimit = yamlConfig.Suggestion.DailyRequestLimit
	}
	if yamlConfig.Suggestion.GenerationTimeout > 0 {
		c.Suggestion.GenerationTimeout = yamlConfig.Suggestion.GenerationTimeout
	}

	return nil
}

func (c *Config) SetSuggestionDefaults() {
	if c.Suggestion.Provider == "" {
		c.Suggestion.Provider = "groq"
	}
	if !c.Suggestion.FallbackEnabled {
		c.Suggestion.FallbackEnabled = true
	}
	if c.Suggestion.FallbackProvider == "" {
		c.Suggestion.FallbackProvider = "openai"
	}
	if c.Suggestion.DailyRequestLimit <= 0 {
		c.Suggestion.DailyRequestLimit = 20
	}
	if c.Suggestion.GenerationTimeout <= 0 {
		c.Suggestion.GenerationTimeout = 60
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return nil
}
