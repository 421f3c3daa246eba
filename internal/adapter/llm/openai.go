package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/sashabaranov/go-openai"
)

// OpenAI implements domain.ChatModel with any OpenAI-compatible chat
// completions endpoint.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	metrics   *observability.Metrics
}

// OpenAIOptions configures an OpenAI model. An empty BaseURL uses the
// public API.
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewOpenAI creates an OpenAI chat model.
func NewOpenAI(opts OpenAIOptions, metrics *observability.Metrics) *OpenAI {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: opts.Timeout}
	return &OpenAI{
		client:    openai.NewClientWithConfig(config),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		metrics:   metrics,
	}
}

// Complete sends the system prompt and conversation and returns the reply text.
func (o *OpenAI) Complete(ctx context.Context, system string, messages []domain.Turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  msgs,
		MaxTokens: o.maxTokens,
	})
	o.metrics.LLMDuration.WithLabelValues(ProviderOpenAI).Observe(time.Since(start).Seconds())
	if err != nil {
		if statusCode(err) == http.StatusTooManyRequests {
			return "", fmt.Errorf("openai: %w: %w", domain.ErrRateLimited, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
