package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Providers.OpenAIBaseURL)
	assert.Equal(t, "https://api.anthropic.com/v1", cfg.Providers.AnthropicBaseURL)
	assert.Equal(t, "2023-06-01", cfg.Providers.AnthropicVersion)
	assert.Equal(t, 5*time.Minute, cfg.Identity.CacheTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Store.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("IDENTITY_URL", "http://identity.local")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "sk-test-openai", cfg.Providers.OpenAIKey)
	assert.Equal(t, "sk-ant-test", cfg.Providers.AnthropicKey)
	assert.Equal(t, "http://identity.local", cfg.Identity.URL)
}
