package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DB_HOST", "ENV", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"OPENAI_MAX_TOKENS", "PW_HEADLESS", "PW_ACTION_TIMEOUT",
		"AGENT_DATA_DIR", "AGENT_STEP_BUDGET", "MIGRATIONS_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Logger.Env)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 300, cfg.OpenAI.MaxTokens)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigateTimeout)
	assert.Equal(t, "./data", cfg.Agent.DataDir)
	assert.Equal(t, 5, cfg.Agent.StepBudget)
	assert.Equal(t, 2, cfg.Agent.MaxConsecutiveErrors)
	assert.Equal(t, "file://migrations", cfg.Migrations.Path)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MAX_TOKENS", "500")
	t.Setenv("PW_HEADLESS", "false")
	t.Setenv("PW_ACTION_TIMEOUT", "10s")
	t.Setenv("AGENT_STEP_BUDGET", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "sk-test", cfg.OpenAI.KeyAI)
	assert.Equal(t, 500, cfg.OpenAI.MaxTokens)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, 12, cfg.Agent.StepBudget)
}

func TestLoadIgnoresGarbageValues(t *testing.T) {
	t.Setenv("OPENAI_MAX_TOKENS", "many")
	t.Setenv("PW_ACTION_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.Browser.ActionTimeout)
}
