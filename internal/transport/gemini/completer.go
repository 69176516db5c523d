package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/metrics"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

// models is the subset of *genai.Models the completer calls.
type models interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds the Gemini API settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// Completer is a language-model client over the Gemini API.
type Completer struct {
	models      models
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewCompleter creates a Gemini completion client.
func NewCompleter(ctx context.Context, cfg Config) (*Completer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newCompleter(client.Models, cfg), nil
}

func newCompleter(m models, cfg Config) *Completer {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{models: m, model: model, temperature: cfg.Temperature, logger: logger}
}

// Model returns the configured model name.
func (c *Completer) Model() string { return c.model }

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if maxOutput > 0 {
		config.MaxOutputTokens = int32(maxOutput) //nolint:gosec // bounded by config validation
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		perr := mapError(err)
		metrics.ObserveCompletion(providerName, c.model, 0, 0, 0, metrics.ErrorType(perr))
		c.logger.Warn("Gemini request failed", zap.String("model", c.model), zap.Error(perr))
		return domain.Completion{}, perr
	}

	text := responseText(resp)
	if text == "" {
		metrics.ObserveCompletion(providerName, c.model, 0, 0, 0, "empty_response")
		return domain.Completion{}, domain.NewProviderError(providerName, domain.ErrProviderError, 0,
			"empty response")
	}

	out := domain.Completion{Text: text}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
	}
	metrics.ObserveCompletion(providerName, c.model, time.Since(start).Seconds(),
		out.PromptTokens, out.CompletionTokens, "")

	return out, nil
}

// responseText joins the text parts of every candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.TrimSpace(part.Text))
		}
	}
	return b.String()
}

// mapError converts genai errors to domain provider failure kinds.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(providerName, domain.ErrProviderTimeout, 0, err.Error())
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr)
	}

	return domain.NewProviderError(providerName, domain.ErrProviderError, 0, err.Error())
}

func fromAPIError(e genai.APIError) error {
	kind := domain.ProviderKindForStatus(e.Code)
	switch e.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		kind = domain.ErrProviderAuth
	case "RESOURCE_EXHAUSTED":
		kind = domain.ErrProviderRateLimited
	case "DEADLINE_EXCEEDED":
		kind = domain.ErrProviderTimeout
	}
	// The Gemini API reports a bad key as 400 INVALID_ARGUMENT.
	if strings.Contains(strings.ToLower(e.Message), "api key not valid") {
		kind = domain.ErrProviderAuth
	}
	return domain.NewProviderError(providerName, kind, e.Code, e.Message)
}
