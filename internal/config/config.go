package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"speclens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig `validate:"required"`
	Ops      OpsConfig
	Database DatabaseConfig
	AI       AIConfig    `validate:"required"`
	Audit    AuditConfig `validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// OpsConfig holds the operational sidecar listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// DatabaseConfig holds database connection settings. An empty URL means
// reports are kept in memory only.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ConnString returns the connection string with the configured sslmode
// applied when the URL does not already carry parameters.
func (d DatabaseConfig) ConnString() string {
	if d.URL == "" || d.SSLMode == "" || strings.Contains(d.URL, "?") {
		return d.URL
	}
	return d.URL + "?sslmode=" + d.SSLMode
}

// AIConfig holds contextual evaluation settings
type AIConfig struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	MaxRetries    int
	PromptsDir    string
}

// AuditConfig holds scoring engine settings
type AuditConfig struct {
	StrictContextual bool
	TruncateChars    int
	MaxDocumentBytes int
	MaxConcurrent    int
	ChecklistFile    string
}

// Providers accepted in AI_PROVIDER
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderDisabled = "disabled"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Ops:      loadOpsConfig(),
		Database: loadDatabaseConfig(),
		AI:       loadAIConfig(),
		Audit:    loadAuditConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadOpsConfig() OpsConfig {
	return OpsConfig{
		Port:    getEnvOrDefault("OPS_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadAIConfig() AIConfig {
	cfg := AIConfig{
		Provider:      os.Getenv("AI_PROVIDER"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", ""),
		MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 4000),
		Temperature:   getEnvFloatOrDefault("TEMPERATURE", 0.1),
		Timeout:       getEnvDurationOrDefault("AI_TIMEOUT", 45*time.Second),
		MaxRetries:    getEnvIntOrDefault("AI_MAX_RETRIES", 1),
		PromptsDir:    getEnvOrDefault("PROMPTS_DIR", "./ai/prompts"),
	}

	if cfg.Provider == "" {
		switch {
		case cfg.OpenAIKey != "":
			cfg.Provider = ProviderOpenAI
		case cfg.GeminiKey != "":
			cfg.Provider = ProviderGemini
		default:
			cfg.Provider = ProviderDisabled
		}
	}

	return cfg
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		StrictContextual: getEnvBoolOrDefault("AUDIT_STRICT_CONTEXTUAL", false),
		TruncateChars:    getEnvIntOrDefault("AUDIT_TRUNCATE_CHARS", 20000),
		MaxDocumentBytes: getEnvIntOrDefault("AUDIT_MAX_DOCUMENT_BYTES", 1<<20),
		MaxConcurrent:    getEnvIntOrDefault("AUDIT_MAX_CONCURRENT", 4),
		ChecklistFile:    getEnvOrDefault("CHECKLIST_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	switch config.AI.Provider {
	case ProviderOpenAI:
		if config.AI.OpenAIKey == "" {
			return errors.ConfigInvalid("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case ProviderGemini:
		if config.AI.GeminiKey == "" {
			return errors.ConfigInvalid("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case ProviderDisabled:
	default:
		return errors.ConfigInvalid("AI_PROVIDER must be openai, gemini, or disabled")
	}

	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("AI_TIMEOUT must be positive")
	}
	if config.Audit.TruncateChars < 0 {
		return errors.ConfigInvalid("AUDIT_TRUNCATE_CHARS must not be negative")
	}
	if config.Audit.MaxDocumentBytes <= 0 {
		return errors.ConfigInvalid("AUDIT_MAX_DOCUMENT_BYTES must be positive")
	}
	if config.Audit.MaxConcurrent < 1 {
		return errors.ConfigInvalid("AUDIT_MAX_CONCURRENT must be at least 1")
	}

	return nil
}

// ContextualEnabled reports whether a provider is configured.
func (c *Config) ContextualEnabled() bool {
	return c.AI.Provider != ProviderDisabled
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
