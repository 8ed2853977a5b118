package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "text-embedding-004", config.Model)
	assert.Equal(t, "GEMINI_API_KEY", config.APIKeyEnv)
	assert.NoError(t, config.Validate())
}

func TestDefaultOpenAIConfig(t *testing.T) {
	config := DefaultOpenAIConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "https://api.openai.com/v1", config.BaseURL)
	assert.NoError(t, config.Validate())
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, "text-embedding-004", config.Model)
	assert.Equal(t, "custom-model", newConfig.Model)
	assert.Equal(t, config.Provider, newConfig.Provider)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"unknown provider", Config{Provider: "anthropic", Model: "m"}, "unknown embedding provider"},
		{"missing model", Config{Provider: ProviderGemini}, "model is required"},
		{"negative timeout", Config{Provider: ProviderOpenAI, Model: "m", Timeout: -1}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewEmbedder_GeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewEmbedder(context.Background(), DefaultGeminiConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewEmbedder_OpenAIFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	e, err := NewEmbedder(context.Background(), DefaultOpenAIConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, "openai:text-embedding-3-small", e.Name())
	assert.NoError(t, e.Close())
}
