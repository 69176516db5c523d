package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/metrics"
)

// Completer is a language-model client over the OpenAI chat completions API.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	provider    string
	logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion client.
func NewCompleter(cfg *Config, temperature float32) *Completer {
	return &Completer{
		client:      newClient(cfg),
		model:       cfg.Model,
		temperature: temperature,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Complete implements domain.Completer with a single user message.
func (c *Completer) Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxOutput,
		Temperature: c.temperature,
		User:        c.user,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		perr := parseAPIError(c.provider, err)
		metrics.ObserveCompletion(c.provider, c.model, 0, 0, 0, metrics.ErrorType(perr))
		c.logger.Warn("Completion request failed", zap.String("provider", c.provider), zap.Error(perr))
		return domain.Completion{}, perr
	}

	if len(resp.Choices) == 0 {
		metrics.ObserveCompletion(c.provider, c.model, 0, 0, 0, "empty_response")
		return domain.Completion{}, domain.NewProviderError(c.provider, domain.ErrProviderError, 0, "no choices in response")
	}

	out := domain.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	metrics.ObserveCompletion(c.provider, c.model, time.Since(start).Seconds(),
		out.PromptTokens, out.CompletionTokens, "")

	return out, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", parseAPIError(c.provider, err))
	}
	return nil
}
