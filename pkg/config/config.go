package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for insight-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// ClickHouse analytics store configuration
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`

	// LLM provider and routing configuration
	LLM LLMConfig `yaml:"llm"`
}

// ClickHouseConfig holds analytics store connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host" env:"CLICKHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"CLICKHOUSE_PORT" env-default:"9000"`
	Database string `yaml:"database" env:"CLICKHOUSE_DATABASE" env-default:"analytics"`
	Username string `yaml:"username" env:"CLICKHOUSE_USERNAME" env-default:"default"`
	Password string `yaml:"-" env:"CLICKHOUSE_PASSWORD"` // Secret - not in YAML

	// RequestTimeoutSeconds bounds a single query server-side.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"CLICKHOUSE_REQUEST_TIMEOUT_SECONDS" env-default:"30"`
	// MaxRowsToRead caps how many rows a query may scan.
	MaxRowsToRead uint64 `yaml:"max_rows_to_read" env:"CLICKHOUSE_MAX_ROWS_TO_READ" env-default:"1000000"`
}

// RequestTimeout returns the query timeout as a duration.
func (c *ClickHouseConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LLMConfig holds provider endpoints, keys, and the model routing table.
type LLMConfig struct {
	// Endpoint is the OpenAI-compatible aggregator base URL serving all
	// routed models.
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://openrouter.ai/api/v1"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	// AnthropicAPIKey, when set, routes Anthropic models through the
	// first-party Messages API instead of the aggregator.
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML

	// Routing table. Premium handles complex reasoning, LargeContext handles
	// oversized on-screen context, Minimal handles everything else.
	PremiumModel      string `yaml:"premium_model" env:"LLM_PREMIUM_MODEL" env-default:"anthropic/claude-sonnet-4.5"`
	LargeContextModel string `yaml:"large_context_model" env:"LLM_LARGE_CONTEXT_MODEL" env-default:"google/gemini-2.5-pro"`
	MinimalModel      string `yaml:"minimal_model" env:"LLM_MINIMAL_MODEL" env-default:"anthropic/claude-haiku-4.5"`

	// RequestTimeoutSeconds bounds one provider call. The fallback path may
	// take up to twice this before giving up.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"LLM_REQUEST_TIMEOUT_SECONDS" env-default:"120"`
}

// RequestTimeout returns the per-call provider timeout as a duration.
func (c *LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml (when present) and the
// environment, then validates the result.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" && c.LLM.AnthropicAPIKey == "" {
		return errors.New("at least one of LLM_API_KEY or ANTHROPIC_API_KEY must be set")
	}
	if c.LLM.PremiumModel == "" || c.LLM.LargeContextModel == "" || c.LLM.MinimalModel == "" {
		return errors.New("all three routing models must be configured")
	}
	if c.ClickHouse.Host == "" || c.ClickHouse.Database == "" {
		return errors.New("clickhouse host and database are required")
	}
	if c.ClickHouse.RequestTimeoutSeconds <= 0 {
		return errors.New("clickhouse request timeout must be positive")
	}
	return nil
}
