package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	narrativeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "iago",
		Subsystem: "assistant",
		Name:      "generation_duration_seconds",
		Help:      "Duration of narrative generation requests",
	}, []string{"model"})

	narrativeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iago",
		Subsystem: "assistant",
		Name:      "generation_failures_total",
		Help:      "Number of narrative generation failures",
	}, []string{"model"})
)

// The fixed human instruction; the questionnaire data travels in the filled
// system template, as the prompt author designed it.
const narrativeInstruction = "Gere o feedback para o colaborador"

// ChatConfig defines configuration options for a chat-completion generator.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	Assistant   AssistantConfig
	Logger      zerolog.Logger
}

// ChatGenerator implements Generator against an OpenAI-compatible chat
// completion API.
type ChatGenerator struct {
	client *openai.Client
	cfg    ChatConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewChatGenerator builds a generator from the provided configuration.
func NewChatGenerator(cfg ChatConfig) (*ChatGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant api key is required")
	}

	if cfg.Assistant.Model == "" {
		return nil, fmt.Errorf("%w: model is empty", ErrInvalidConfig)
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &ChatGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/iago-labs/iago-go-api/pkg/ai"),
		logger: logger.With().Str("component", "chat_generator").Logger(),
	}, nil
}

// Generate fills the system template with the questionnaire slots and runs a
// single two-message conversation against the model, retrying transient
// provider failures a bounded number of times.
func (g *ChatGenerator) Generate(parent context.Context, input NarrativeInput) (string, error) {
	ctx, span := g.tracer.Start(parent, "assistant.generate", trace.WithAttributes(
		attribute.String("model", g.cfg.Assistant.Model),
		attribute.Int("questions", len(input.Questions)),
	))
	defer span.End()

	systemPrompt, err := RenderTemplate(g.cfg.Assistant.SystemMessage, BuildSlots(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Assistant.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Assistant.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: narrativeInstruction},
		},
	}

	start := time.Now()
	content, err := g.complete(ctx, request)
	narrativeDuration.WithLabelValues(g.cfg.Assistant.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		narrativeFailures.WithLabelValues(g.cfg.Assistant.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return content, nil
}

func (g *ChatGenerator) complete(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			g.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying narrative generation")
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		resp, err := g.client.CreateChatCompletion(attemptCtx, request)
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("assistant completion: %w", err)
			if !isTransient(err) {
				return "", lastErr
			}
			continue
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("assistant completion: no choices returned")
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	return "", lastErr
}

// isTransient reports whether the provider failure is worth retrying.
// Validation-type rejections (4xx other than 429) never are.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Network-level faults surface as plain errors.
	return true
}
