package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. MINIRAG_CHUNK_SIZE.
const EnvPrefix = "MINIRAG"

// Config is the in-memory representation of ~/.minirag/config.yaml.
type Config struct {
	DocumentsDir string `yaml:"documents_dir" mapstructure:"documents_dir"`
	IndexDir     string `yaml:"index_dir" mapstructure:"index_dir"`

	EmbeddingModel     string `yaml:"embedding_model" mapstructure:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension" mapstructure:"embedding_dimension"`
	EmbeddingBatchSize int    `yaml:"embedding_batch_size" mapstructure:"embedding_batch_size"`
	LLMModel           string `yaml:"llm_model" mapstructure:"llm_model"`
	TokenizerModel     string `yaml:"tokenizer_model" mapstructure:"tokenizer_model"`

	ChunkSize    int `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`

	DefaultTopK       int `yaml:"default_top_k" mapstructure:"default_top_k"`
	RerankTopK        int `yaml:"rerank_top_k" mapstructure:"rerank_top_k"`
	RerankInitialK    int `yaml:"rerank_initial_k" mapstructure:"rerank_initial_k"`
	RerankConcurrency int `yaml:"rerank_concurrency" mapstructure:"rerank_concurrency"`

	AnswerTemperature float64 `yaml:"answer_temperature" mapstructure:"answer_temperature"`
	AnswerMaxTokens   int     `yaml:"answer_max_tokens" mapstructure:"answer_max_tokens"`

	OpenAIBaseURL  string        `yaml:"openai_base_url,omitempty" mapstructure:"openai_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	LogFile        string        `yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Dir returns the absolute path to ~/.minirag/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".minirag"), nil
}

// ConfigPath returns the absolute path to ~/.minirag/config.yaml.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first minirag init.
func DefaultConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DocumentsDir:       filepath.Join(dir, "documents"),
		IndexDir:           filepath.Join(dir, "index"),
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
		EmbeddingBatchSize: 100,
		LLMModel:           "gpt-4o-mini",
		TokenizerModel:     "gpt-4",
		ChunkSize:          400,
		ChunkOverlap:       50,
		DefaultTopK:        5,
		RerankTopK:         3,
		RerankInitialK:     10,
		RerankConcurrency:  1,
		AnswerTemperature:  0.7,
		AnswerMaxTokens:    500,
		RequestTimeout:     2 * time.Minute,
		LogFile:            filepath.Join(dir, "minirag.log"),
	}, nil
}

// Load resolves the effective configuration: defaults, then the YAML file at
// path (ConfigPath when empty), then MINIRAG_* environment variables.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config %s: %w", path, err)
	}
	for _, p := range []*string{&cfg.DocumentsDir, &cfg.IndexDir, &cfg.LogFile} {
		*p, err = ExpandPath(*p)
		if err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// newViper returns a viper instance seeded with DefaultConfig so every key is
// known to AutomaticEnv.
func newViper() (*viper.Viper, error) {
	def, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal default config: %w", err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("cannot decode default config: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// Keys that are omitted when empty still need a binding for env lookup.
	v.SetDefault("openai_base_url", def.OpenAIBaseURL)
	v.SetDefault("log_file", def.LogFile)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v, nil
}

// Save marshals cfg and writes it to path (ConfigPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first configuration error in cfg.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DocumentsDir) == "":
		return fmt.Errorf("documents_dir is not configured")
	case strings.TrimSpace(c.IndexDir) == "":
		return fmt.Errorf("index_dir is not configured")
	case strings.TrimSpace(c.EmbeddingModel) == "":
		return fmt.Errorf("embedding_model is not configured")
	case strings.TrimSpace(c.LLMModel) == "":
		return fmt.Errorf("llm_model is not configured")
	case strings.TrimSpace(c.TokenizerModel) == "":
		return fmt.Errorf("tokenizer_model is not configured")
	case c.EmbeddingDimension < 0:
		return fmt.Errorf("embedding_dimension must be zero (any) or positive, got %d", c.EmbeddingDimension)
	case c.EmbeddingBatchSize <= 0:
		return fmt.Errorf("embedding_batch_size must be greater than zero, got %d", c.EmbeddingBatchSize)
	case c.ChunkSize <= 0:
		return fmt.Errorf("chunk_size must be greater than zero, got %d", c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	case c.DefaultTopK <= 0:
		return fmt.Errorf("default_top_k must be greater than zero, got %d", c.DefaultTopK)
	case c.RerankTopK <= 0:
		return fmt.Errorf("rerank_top_k must be greater than zero, got %d", c.RerankTopK)
	case c.RerankInitialK < c.RerankTopK:
		return fmt.Errorf("rerank_initial_k (%d) must be at least rerank_top_k (%d)", c.RerankInitialK, c.RerankTopK)
	case c.RerankConcurrency <= 0:
		return fmt.Errorf("rerank_concurrency must be greater than zero, got %d", c.RerankConcurrency)
	case c.AnswerTemperature < 0 || c.AnswerTemperature > 2:
		return fmt.Errorf("answer_temperature must be in [0, 2], got %g", c.AnswerTemperature)
	case c.AnswerMaxTokens <= 0:
		return fmt.Errorf("answer_max_tokens must be greater than zero, got %d", c.AnswerMaxTokens)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
