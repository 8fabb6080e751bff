// Package llm wraps the chat-completion service used for re-ranking and
// answer generation.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kamusis/minirag/internal/config"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one entry of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// Request is a single non-streaming completion request.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Chat returns the text of one completion.
type Chat interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config contains the resolved chat configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// LoadConfig resolves chat config from cfg plus the API key from the
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
		Model:   cfg.LLMModel,
		APIKey:  apiKey,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.RequestTimeout,
	}, nil
}

type openAIChat struct {
	model  string
	client openai.Client
}

// NewOpenAI returns a Chat backed by the OpenAI chat completions API.
func NewOpenAI(cfg *Config) (Chat, error) {
	if cfg == nil {
		return nil, fmt.Errorf("chat config is nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("chat model is not configured (set llm_model)")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat API key is not configured")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &openAIChat{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (c *openAIChat) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    msgs,
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
