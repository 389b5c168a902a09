// Package config loads application configuration from environment variables.
// All variables use the PLANPEI_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default template locations, published as Google Docs exports.
const (
	defaultPlanTemplateURL       = "https://docs.google.com/document/d/144_yUOythmkjTsP9PA4k5YLOpRFyV7Zv/export?format=docx"
	defaultAssessmentTemplateURL = "https://docs.google.com/document/d/15ASfn_LF-jsPh5CYn4FJvEBSpm31hPAA/export?format=docx"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	AI        AIConfig
	Templates TemplateConfig
	Log       LogConfig
	// ReferencePath overrides the embedded MYP reference catalogue.
	ReferencePath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// template byte cache.
type CacheConfig struct {
	URL string
	// TemplateTTL is the template cache lifetime in minutes.
	TemplateTTL int
}

// AIConfig holds configuration for the generation providers.
type AIConfig struct {
	Groq   GroqConfig
	Google GoogleConfig
}

// GroqConfig holds Groq provider settings.
type GroqConfig struct {
	APIKey string
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey string
}

// TemplateConfig holds document template locations.
type TemplateConfig struct {
	PlanURL       string
	AssessmentURL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with PLANPEI_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PLANPEI_SERVER_PORT", 8080),
			Host: envStr("PLANPEI_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("PLANPEI_DATABASE_URL", ""),
			MaxConns: envInt("PLANPEI_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("PLANPEI_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL:         envStr("PLANPEI_CACHE_URL", ""),
			TemplateTTL: envInt("PLANPEI_CACHE_TEMPLATE_TTL", 60),
		},
		AI: AIConfig{
			Groq: GroqConfig{
				APIKey: envStr("PLANPEI_AI_GROQ_API_KEY", ""),
			},
			Google: GoogleConfig{
				APIKey: envStr("PLANPEI_AI_GOOGLE_API_KEY", ""),
			},
		},
		Templates: TemplateConfig{
			PlanURL:       envStr("PLANPEI_TEMPLATE_PLAN_URL", defaultPlanTemplateURL),
			AssessmentURL: envStr("PLANPEI_TEMPLATE_ASSESSMENT_URL", defaultAssessmentTemplateURL),
		},
		Log: LogConfig{
			Level:  envStr("PLANPEI_LOG_LEVEL", "info"),
			Format: envStr("PLANPEI_LOG_FORMAT", "json"),
		},
		ReferencePath: envStr("PLANPEI_REFERENCE_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}
	if c.Templates.PlanURL == "" || c.Templates.AssessmentURL == "" {
		return fmt.Errorf("template URLs must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("PLANPEI_LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.Groq.APIKey != "" || c.AI.Google.APIKey != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
