package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	FrontendURL string
	LogLevel    string
	DatabaseURL string
	RedisURL    string
	LLM         LLMConfig
	Sources     SourcesConfig
}

// SourcesConfig holds the news and market data credentials used by the
// collector. An empty key disables that source.
type SourcesConfig struct {
	FinnhubKey      string
	AlphaVantageKey string
	MassiveKey      string
	CacheTTL        time.Duration
}

type LLMConfig struct {
	Provider     string
	OpenAIKey    string
	AnthropicKey string
	Model        string
	Timeout      time.Duration
	Language     string
}

// APIKey returns the credential for the selected provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

var envKeys = map[string]string{
	"port":              "PORT",
	"frontend_url":      "FRONTEND_URL",
	"log_level":         "LOG_LEVEL",
	"database_url":      "DATABASE_URL",
	"redis_url":         "REDIS_URL",
	"sources.finnhub":   "FINNHUB_API_KEY",
	"sources.alpha":     "ALPHA_VANTAGE_API_KEY",
	"sources.massive":   "MASSIVE_API_KEY",
	"sources.cache_ttl": "NEWS_CACHE_TTL",
	"llm.provider":      "LLM_PROVIDER",
	"llm.openai_key":    "OPENAI_API_KEY",
	"llm.anthropic_key": "ANTHROPIC_API_KEY",
	"llm.model":         "LLM_MODEL",
	"llm.timeout":       "LLM_TIMEOUT",
	"llm.language":      "INSIGHTS_LANGUAGE",
}

// Load reads configuration from the environment. Call godotenv.Load first so a
// local .env file is honoured.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	cfg := &Config{
		Port:        v.GetString("port"),
		FrontendURL: v.GetString("frontend_url"),
		LogLevel:    v.GetString("log_level"),
		DatabaseURL: v.GetString("database_url"),
		RedisURL:    v.GetString("redis_url"),
		LLM: LLMConfig{
			Provider:     strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			OpenAIKey:    v.GetString("llm.openai_key"),
			AnthropicKey: v.GetString("llm.anthropic_key"),
			Model:        v.GetString("llm.model"),
			Timeout:      v.GetDuration("llm.timeout"),
			Language:     v.GetString("llm.language"),
		},
		Sources: SourcesConfig{
			FinnhubKey:      v.GetString("sources.finnhub"),
			AlphaVantageKey: v.GetString("sources.alpha"),
			MassiveKey:      v.GetString("sources.massive"),
			CacheTTL:        v.GetDuration("sources.cache_ttl"),
		},
	}

	if cfg.LLM.Timeout <= 0 {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT %q", v.GetString("llm.timeout"))
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8001")
	v.SetDefault("log_level", "info")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.language", "English")
	v.SetDefault("sources.cache_ttl", "6h")
}

func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000"}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
