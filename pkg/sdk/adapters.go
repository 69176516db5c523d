package resumerank

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

// embedderAdapter wraps a public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

// batchEmbedderAdapter additionally exposes the caller's batch endpoint.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

// newEmbedderAdapter keeps the batch capability visible to ingestion only
// when the caller's embedder has one.
func newEmbedderAdapter(e Embedder) domain.Embedder {
	base := embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: base, batch: be}
	}
	return &base
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// completerAdapter wraps a public Completer to satisfy domain.Completer.
// Errors should wrap one of the ErrProvider* sentinels so fallbacks can
// report a precise reason.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	r, err := a.inner.Complete(ctx, prompt, maxOutput)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}
	return domain.Completion{
		Text:             r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
	}, nil
}
