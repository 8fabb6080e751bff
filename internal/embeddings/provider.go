package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/kamusis/minirag/internal/config"
)

// Provider embeds a batch of texts into fixed-length float vectors, one per
// input in input order.
//
// Implementations must be deterministic for the same input text and model.
// Returned vectors are not normalized.
type Provider interface {
	ModelID() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// LoadConfig resolves embeddings config from cfg plus the API key from the
// environment or dotenv files.
func LoadConfig(cfg *config.Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	apiKey, err := config.APIKey()
	if err != nil {
		return nil, err
	}
	return &Config{
		Provider: "openai",
		Model:    cfg.EmbeddingModel,
		APIKey:   apiKey,
		BaseURL:  cfg.OpenAIBaseURL,
		Timeout:  cfg.RequestTimeout,
	}, nil
}

// ModelID returns the identifier recorded in an index built by the given
// provider and model, e.g. "openai:text-embedding-3-small".
func ModelID(provider, model string) string {
	if provider == "" {
		provider = "openai"
	}
	return provider + ":" + model
}

// NewFromConfig returns an embeddings provider.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
