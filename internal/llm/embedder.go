package llm

import (
	"context"
	"fmt"
	"os"
)

// Embedder maps text to a fixed-length dense vector.
// For a given model version the mapping is deterministic.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
	Close() error
}

// NewEmbedder creates an embedder for the configured provider.
// An empty apiKey is read from the environment variable named by cfg.APIKeyEnv.
func NewEmbedder(ctx context.Context, cfg *Config, apiKey string) (Embedder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if apiKey == "" && cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, cfg, apiKey)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
