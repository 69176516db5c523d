package anthropic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/metrics"
)

const providerName = "anthropic"

// Config holds the Anthropic API settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// Completer is a language-model client over the Anthropic Messages API.
type Completer struct {
	client      *anthropic.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewCompleter creates a Claude completion client.
func NewCompleter(cfg Config) *Completer {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete implements domain.Completer with a single user turn.
func (c *Completer) Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	temp := c.temperature
	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens:   maxOutput,
		Temperature: &temp,
	})
	if err != nil {
		perr := mapError(err)
		metrics.ObserveCompletion(providerName, c.model, 0, 0, 0, metrics.ErrorType(perr))
		c.logger.Warn("Anthropic request failed", zap.String("model", c.model), zap.Error(perr))
		return domain.Completion{}, perr
	}

	var b strings.Builder
	for _, part := range resp.Content {
		if part.Text == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(*part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		metrics.ObserveCompletion(providerName, c.model, 0, 0, 0, "empty_response")
		return domain.Completion{}, domain.NewProviderError(providerName, domain.ErrProviderError, 0,
			"no response content")
	}

	out := domain.Completion{
		Text:             b.String(),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}
	metrics.ObserveCompletion(providerName, c.model, time.Since(start).Seconds(),
		out.PromptTokens, out.CompletionTokens, "")

	return out, nil
}

// mapError converts go-anthropic errors to domain provider failure kinds.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(providerName, domain.ErrProviderTimeout, 0, err.Error())
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		kind := domain.ErrProviderError
		switch string(apiErr.Type) {
		case "authentication_error", "permission_error":
			kind = domain.ErrProviderAuth
		case "rate_limit_error":
			kind = domain.ErrProviderRateLimited
		}
		return domain.NewProviderError(providerName, kind, 0, apiErr.Message)
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewProviderError(providerName,
			domain.ProviderKindForStatus(reqErr.StatusCode), reqErr.StatusCode, err.Error())
	}

	return domain.NewProviderError(providerName, domain.ErrProviderError, 0, err.Error())
}
