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

// Embedder is an embedding provider using the OpenAI-compatible API (OpenAI, Nebius, vLLM).
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the provider settings shared by Embedder and Completer.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // embeddings only; 0 leaves the model default
	User       string
	Provider   string // metrics and error label, e.g. "openai", "nebius"
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder with a single API call.
// Vectors are returned in input order regardless of the order in the response.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.create(ctx, texts)
}

func (e *Embedder) create(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	model := string(e.model)
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	call := metrics.EmbeddingCall{Provider: e.provider, Model: model, Texts: len(texts)}
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	call.Seconds = time.Since(start).Seconds()

	if err != nil {
		perr := parseAPIError(e.provider, err)
		call.ErrorType = metrics.ErrorType(perr)
		metrics.ObserveEmbedding(call)
		e.logger.Warn("Embedding request failed",
			zap.String("provider", e.provider), zap.Int("texts", len(texts)), zap.Error(perr))
		return domain.BatchEmbeddingResult{}, perr
	}

	if len(resp.Data) != len(texts) {
		call.ErrorType = "count_mismatch"
		metrics.ObserveEmbedding(call)
		return domain.BatchEmbeddingResult{}, domain.NewProviderError(e.provider, domain.ErrProviderError, 0,
			fmt.Sprintf("got %d embeddings for %d inputs", len(resp.Data), len(texts)))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			call.ErrorType = "bad_index"
			metrics.ObserveEmbedding(call)
			return domain.BatchEmbeddingResult{}, domain.NewProviderError(e.provider, domain.ErrProviderError, 0,
				fmt.Sprintf("embedding index %d out of range", d.Index))
		}
		out[d.Index] = d.Embedding
	}

	call.PromptTokens = resp.Usage.PromptTokens
	call.TotalTokens = resp.Usage.TotalTokens
	metrics.ObserveEmbedding(call)

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", parseAPIError(e.provider, err))
	}
	return nil
}
