// Package llm wraps the configured chat model behind a single Complete
// call. Backend selection (OpenAI, DeepSeek, or a local Ollama server via
// its OpenAI-compatible endpoint) is decided once at construction from the
// config record.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/equilens/equilens/config"
)

// Client is a thin completion facade over an eino chat model.
type Client struct {
	model   model.BaseChatModel
	backend string
}

// New builds the chat model for the configured backend.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	var (
		cm  model.BaseChatModel
		err error
	)
	switch cfg.LLMBackend {
	case config.BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai backend requires OPENAI_API_KEY")
		}
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
	case config.BackendDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("deepseek backend requires DEEPSEEK_API_KEY")
		}
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.DeepSeekAPIKey,
			Model:       cfg.Model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	case config.BackendOllama:
		// Ollama speaks the OpenAI chat protocol on /v1.
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      "ollama",
			BaseURL:     cfg.OllamaBaseURL,
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported llm backend %q", cfg.LLMBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", cfg.LLMBackend, err)
	}

	return &Client{model: cm, backend: cfg.LLMBackend}, nil
}

// Backend returns the configured backend name.
func (c *Client) Backend() string {
	return c.backend
}

// Complete sends one system+user exchange and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("%s provider: %w", c.backend, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%s provider: empty completion", c.backend)
	}
	return msg.Content, nil
}
