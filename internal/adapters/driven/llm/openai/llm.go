// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/paperchat/internal/adapters/driven/provider"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second

	name = "openai"
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Any OpenAI-compatible endpoint works.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout bounds a single request (default: 120s).
	Timeout time.Duration

	MaxRetries int
}

// LLMService provides chat completion using the OpenAI API.
type LLMService struct {
	client openai.Client
	model  string
	policy provider.Policy
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
		policy: provider.NewPolicy(cfg.MaxRetries),
	}, nil
}

// NewClient builds an openai-go client. Retries are handled by
// provider.Policy so the SDK's own retry loop is disabled.
func NewClient(apiKey, baseURL string, timeout time.Duration) openai.Client {
	return openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    toParams(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	var content string
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		resp, err := s.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return ClassifyError("chat", err)
		}
		if len(resp.Choices) == 0 {
			return provider.Malformed(name, "chat", errors.New("no choices returned"))
		}
		content = resp.Choices[0].Message.Content
		if strings.TrimSpace(content) == "" {
			return provider.Malformed(name, "chat", errors.New("empty message content"))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func toParams(messages []driven.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case driven.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case driven.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// ClassifyError converts an openai-go failure into a *domain.ProviderError.
func ClassifyError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		se := &provider.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		if apiErr.Response != nil {
			se.RetryAfter = provider.ParseRetryAfter(apiErr.Response.Header)
		}
		return provider.Classify(name, op, se)
	}
	return provider.Classify(name, op, err)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return ClassifyError("ping", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
