package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml
	t.Setenv("LLM_API_KEY", "sk-or-test")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")
	t.Setenv("PORT", "9090")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "sk-or-test", cfg.LLM.APIKey)
	assert.Equal(t, "secret", cfg.ClickHouse.Password)
	assert.Equal(t, "anthropic/claude-sonnet-4.5", cfg.LLM.PremiumModel)
	assert.Equal(t, 30*time.Second, cfg.ClickHouse.RequestTimeout())
	assert.Equal(t, 120*time.Second, cfg.LLM.RequestTimeout())
}

func TestLoad_RequiresAKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load("test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ClickHouse: ClickHouseConfig{Host: "localhost", Database: "analytics", RequestTimeoutSeconds: 30},
			LLM: LLMConfig{
				APIKey:            "sk",
				PremiumModel:      "a/x",
				LargeContextModel: "g/y",
				MinimalModel:      "a/z",
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing routing model", func(t *testing.T) {
		cfg := base()
		cfg.LLM.MinimalModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing clickhouse database", func(t *testing.T) {
		cfg := base()
		cfg.ClickHouse.Database = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("anthropic key alone is enough", func(t *testing.T) {
		cfg := base()
		cfg.LLM.APIKey = ""
		cfg.LLM.AnthropicAPIKey = "sk-ant"
		assert.NoError(t, cfg.Validate())
	})
}
