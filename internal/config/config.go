// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest): environment variables (FERBOT_ prefix),
// config file (./ferbot.yaml or ~/.ferbot/config.yaml), defaults.
//
// Error handling uses sentinel errors so callers can check with errors.Is().
// Sensitive values (API keys) are read from the environment and never logged.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model identifier is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max output tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTopK indicates the retrieval top-k value is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidChunking indicates an invalid chunk size / overlap combination.
	ErrInvalidChunking = errors.New("invalid chunking")

	// ErrInvalidRateLimit indicates an invalid rate limit or window.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidRetries indicates an invalid retry count.
	ErrInvalidRetries = errors.New("invalid retries")
)

// Default model identifiers (provider-qualified, googlegenai plugin).
const (
	DefaultModel           = "googleai/gemini-2.5-flash"
	DefaultEmbedderModel   = "text-embedding-004"
	DefaultModerationModel = "googleai/gemini-2.5-flash-lite"
)

// Config stores application configuration.
type Config struct {
	// HTTP server
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy"`
	LogJSON     bool     `mapstructure:"log_json"`

	// Model configuration
	ModelName       string  `mapstructure:"model_name"`
	EmbedderModel   string  `mapstructure:"embedder_model"`
	ModerationModel string  `mapstructure:"moderation_model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`

	// Knowledge base
	KnowledgePath string `mapstructure:"knowledge_path"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	ChunkOverlap  int    `mapstructure:"chunk_overlap"`
	TopK          int    `mapstructure:"top_k"`

	// Client admission control
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`

	// Content moderation
	ModerationEnabled bool          `mapstructure:"moderation_enabled"`
	ModerationTimeout time.Duration `mapstructure:"moderation_timeout"`

	// Provider call budgets
	EmbedTimeout    time.Duration `mapstructure:"embed_timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ferbot"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("FERBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("trust_proxy", false)
	v.SetDefault("log_json", false)

	v.SetDefault("model_name", DefaultModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("moderation_model", DefaultModerationModel)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 500)

	v.SetDefault("knowledge_path", "data/profile.md")
	v.SetDefault("chunk_size", 800)
	v.SetDefault("chunk_overlap", 150)
	v.SetDefault("top_k", 3)

	v.SetDefault("rate_limit", 10)
	v.SetDefault("rate_window", 5*time.Minute)

	v.SetDefault("moderation_enabled", true)
	v.SetDefault("moderation_timeout", 10*time.Second)

	v.SetDefault("embed_timeout", 30*time.Second)
	v.SetDefault("generate_timeout", 60*time.Second)
	v.SetDefault("max_retries", 2)
}
