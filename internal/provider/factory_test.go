package provider_test

import (
	"testing"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import sub-packages to trigger init() registration
	_ "github.com/julianshen/repodoc/internal/provider/anthropic"
	_ "github.com/julianshen/repodoc/internal/provider/openai"
)

func TestNewProviderAnthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-anthropic-key")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "anthropic"

	p, err := provider.NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderAnthropicMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "anthropic"
	cfg.Provider.Anthropic.APIKeySource = "env"

	_, err := provider.NewProvider(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestNewProviderOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-openai-key")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "openai"
	cfg.Provider.OpenAI = []config.OpenAICompatibleConfig{
		{
			Name:         "openai",
			BaseURL:      "https://api.openai.com/v1",
			APIKeySource: "env",
		},
	}

	p, err := provider.NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderOpenAICompatibleEnvName(t *testing.T) {
	t.Setenv("LOCAL_LLM_API_KEY", "local-key")

	cfg := config.DefaultConfig()
	cfg.Provider.Default = "local-llm"
	cfg.Provider.OpenAI = []config.OpenAICompatibleConfig{
		{
			Name:         "local-llm",
			BaseURL:      "http://localhost:1234/v1",
			APIKeySource: "env",
			ExtraHeaders: map[string]string{"HTTP-Referer": "https://example.com"},
		},
	}

	p, err := provider.NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderOpenAIWithConfigKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.Default = "openai"
	cfg.Provider.OpenAI = []config.OpenAICompatibleConfig{
		{
			Name:         "openai",
			BaseURL:      "https://api.openai.com/v1",
			APIKeySource: "config",
			APIKey:       "sk-from-config",
		},
	}

	p, err := provider.NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.Default = "nonexistent"

	_, err := provider.NewProvider(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewProviderOpenAICompatibleNeedsBaseURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.Default = "local"
	cfg.Provider.OpenAI = []config.OpenAICompatibleConfig{
		{Name: "local", APIKeySource: "config", APIKey: "k"},
	}

	_, err := provider.NewProvider(cfg, nil)
	assert.ErrorContains(t, err, `provider "local" has no base_url`)
}

func TestAPIKeyEnvVar(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", provider.APIKeyEnvVar("openai"))
	assert.Equal(t, "LOCAL_LLM_API_KEY", provider.APIKeyEnvVar("local-llm"))
}
