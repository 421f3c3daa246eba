package llm

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/travel-assistant/internal/config"
	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
)

// Provider names, also used as metric labels.
const (
	ProviderAnthropic = config.ProviderAnthropic
	ProviderOpenAI    = config.ProviderOpenAI
)

// New builds the chat model selected by cfg.LLMProvider.
func New(cfg *config.Config, metrics *observability.Metrics) (domain.ChatModel, error) {
	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER is anthropic")
		}
		return NewAnthropic(AnthropicOptions{
			APIKey:    cfg.AnthropicAPIKey,
			BaseURL:   cfg.AnthropicBaseURL,
			Model:     cfg.AnthropicModel,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.LLMTimeout,
		}, metrics), nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER is openai")
		}
		return NewOpenAI(OpenAIOptions{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.LLMTimeout,
		}, metrics), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
