package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every tunable environment variable.
// Nested keys use a double underscore, e.g. GENAI_USAGE__SINK.
const EnvPrefix = "GENAI_"

// Usage sinks
const (
	SinkNone      = "none"
	SinkFirestore = "firestore"
	SinkFirebase  = "firebase"
)

// Config holds application configuration.
// Provider API keys are not part of Config; they are read per invocation.
type Config struct {
	Environment string          `koanf:"environment"`
	Port        string          `koanf:"port"`
	Log         LogConfig       `koanf:"log"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
	Usage       UsageConfig     `koanf:"usage"`
	Providers   ProvidersConfig `koanf:"providers"`
	Fields      FieldsConfig    `koanf:"fields"`
	Tracing     bool            `koanf:"tracing"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
}

// RateLimitConfig configures the optional per-process token bucket. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   int `koanf:"rps"`
	Burst int `koanf:"burst"`
}

// UsageConfig selects where invocation outcomes are recorded
type UsageConfig struct {
	Sink        string `koanf:"sink"`
	ProjectID   string `koanf:"project_id"`
	Collection  string `koanf:"collection"`
	DatabaseURL string `koanf:"database_url"`
}

// ProvidersConfig overrides upstream endpoints and attribution
type ProvidersConfig struct {
	GeminiBaseURL      string `koanf:"gemini_base_url"`
	OpenRouterBaseURL  string `koanf:"openrouter_base_url"`
	OpenRouterReferer  string `koanf:"openrouter_referer"`
	OpenRouterTitle    string `koanf:"openrouter_title"`
	HuggingFaceBaseURL string `koanf:"huggingface_base_url"`
}

// FieldsConfig names the envelope field each endpoint answers with.
// Deployed front ends expect different names (ad_copy vs adCopy, post vs response).
type FieldsConfig struct {
	AdCopy       string `koanf:"ad_copy"`
	ContentIdeas string `koanf:"content_ideas"`
	SocialPost   string `koanf:"social_post"`
	Chatbot      string `koanf:"chatbot"`
}

var defaults = map[string]interface{}{
	"log.level":                      "info",
	"log.format":                     "json",
	"rate_limit.rps":                 0,
	"rate_limit.burst":               20,
	"usage.sink":                     SinkNone,
	"usage.collection":               "generations",
	"providers.gemini_base_url":      "https://generativelanguage.googleapis.com",
	"providers.openrouter_base_url":  "https://openrouter.ai",
	"providers.openrouter_referer":   "https://aimarketingautomations.netlify.app/",
	"providers.openrouter_title":     "Asif Content Generator",
	"providers.huggingface_base_url": "https://api-inference.huggingface.co",
	"fields.ad_copy":                 "ad_copy",
	"fields.content_ideas":           "ideas",
	"fields.social_post":             "post",
	"fields.chatbot":                 "response",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Platform conventions win when the prefixed form is unset
	if cfg.Port == "" {
		cfg.Port = getEnvOrDefault("PORT", "8080")
	}
	if cfg.Environment == "" {
		cfg.Environment = getEnvOrDefault("ENVIRONMENT", "production")
	}
	if cfg.Usage.ProjectID == "" {
		cfg.Usage.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	}
	if cfg.Usage.DatabaseURL == "" {
		cfg.Usage.DatabaseURL = os.Getenv("FIREBASE_DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the functions cannot start with
func (c *Config) Validate() error {
	fields := map[string]string{
		"fields.ad_copy":       c.Fields.AdCopy,
		"fields.content_ideas": c.Fields.ContentIdeas,
		"fields.social_post":   c.Fields.SocialPost,
		"fields.chatbot":       c.Fields.Chatbot,
	}
	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	switch c.Usage.Sink {
	case SinkNone, SinkFirestore:
	case SinkFirebase:
		if c.Usage.DatabaseURL == "" {
			return fmt.Errorf("FIREBASE_DATABASE_URL environment variable is required for the firebase usage sink")
		}
	default:
		return fmt.Errorf("unknown usage sink %q", c.Usage.Sink)
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}

	return nil
}

// IsDevelopment reports whether the functions run locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
