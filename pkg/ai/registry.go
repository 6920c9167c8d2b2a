package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnsupportedModel indicates the configured model belongs to no registered
// provider family.
var ErrUnsupportedModel = errors.New("unsupported model")

// Gemini models are reached through Google's OpenAI-compatible endpoint, so
// both families share the chat generator.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// ProviderConfig carries the provider-independent knobs for generator
// construction.
type ProviderConfig struct {
	APIKey     string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
	Logger     zerolog.Logger
}

type providerFactory func(ProviderConfig, AssistantConfig) (Generator, error)

// Providers are keyed by model-name prefix; the configured model selects its
// family here instead of being string-matched at call time.
var providers = map[string]providerFactory{
	"gpt":    newOpenAIGenerator,
	"o1":     newOpenAIGenerator,
	"gemini": newGeminiGenerator,
}

// NewGenerator selects and builds the generator for the configured model.
// Rejecting an unsupported model happens here, before any network call.
func NewGenerator(cfg ProviderConfig, assistant AssistantConfig) (Generator, error) {
	model := strings.ToLower(strings.TrimSpace(assistant.Model))
	for prefix, factory := range providers {
		if strings.HasPrefix(model, prefix) {
			return factory(cfg, assistant)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, assistant.Model)
}

func newOpenAIGenerator(cfg ProviderConfig, assistant AssistantConfig) (Generator, error) {
	return NewChatGenerator(ChatConfig{
		APIKey:     cfg.APIKey,
		MaxTokens:  cfg.MaxTokens,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Assistant:  assistant,
		Logger:     cfg.Logger,
	})
}

func newGeminiGenerator(cfg ProviderConfig, assistant AssistantConfig) (Generator, error) {
	return NewChatGenerator(ChatConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    geminiBaseURL,
		MaxTokens:  cfg.MaxTokens,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Assistant:  assistant,
		Logger:     cfg.Logger,
	})
}
