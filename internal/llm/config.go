// Package llm provides embedding clients used by the dense similarity strategy.
// Providers are selected by configuration so the scoring code only sees Embedder.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an embedding provider
type Provider string

const (
	// ProviderGemini is the Google Gemini embedding API
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible /embeddings endpoint (OpenAI, Ollama, vLLM)
	ProviderOpenAI Provider = "openai"
)

// DefaultTimeout bounds a single embedding request.
const DefaultTimeout = 30 * time.Second

// Config holds the embedding model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// BaseURL is only used by OpenAI-compatible providers.
	BaseURL string
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Model:     "text-embedding-004",
		APIKeyEnv: "GEMINI_API_KEY",
		Timeout:   DefaultTimeout,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider:  ProviderOpenAI,
		Model:     "text-embedding-3-small",
		BaseURL:   "https://api.openai.com/v1",
		APIKeyEnv: "OPENAI_API_KEY",
		Timeout:   DefaultTimeout,
	}
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Model = model
	return &out
}

// Validate checks that the provider is known and a model is set.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("embedding model is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("embedding timeout must not be negative")
	}
	return nil
}
