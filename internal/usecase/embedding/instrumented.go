package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest number of texts sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// Role tells document (resume) embeddings apart from query embeddings in logs.
type Role string

// Embedding roles.
const (
	RoleDocument Role = "document"
	RoleQuery    Role = "query"
)

// InstrumentedEmbedder wraps an Embedder with request logging and splits large
// batches into provider-sized chunks.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	role     Role
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. maxBatch <= 0 means DefaultMaxAPIBatchSize.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, role Role, maxBatch int, logger *zap.Logger,
) *InstrumentedEmbedder {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxAPIBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		role:     role,
		maxBatch: maxBatch,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("role", string(p.role)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed %s: %w", p.role, err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("role", string(p.role)),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into chunks of at most maxBatch and embeds them in order.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	result, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("role", string(p.role)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (p *InstrumentedEmbedder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		chunk := texts[offset:min(offset+p.maxBatch, len(texts))]

		res, err := p.embedInner(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.String("role", string(p.role)),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed %s: %w", p.role, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed %s: got %d embeddings for %d texts: %w",
				p.role, len(res.Embeddings), len(chunk), domain.ErrProviderError)
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	return out, nil
}

func (p *InstrumentedEmbedder) embedInner(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, p.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch fallback: %w", err)
	}
	return res, nil
}
