package ingestion

import (
	"context"

	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
)

// Index is the write side of the candidate vector index.
type Index interface {
	EnsureIndex(ctx context.Context) error
	AddBatch(ctx context.Context, cands []domcand.Candidate, vectors [][]float32) error
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// Embedder vectorizes resume text. Implementations that also satisfy
// domain.BatchEmbedder are called once per batch.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Recorder receives ingestion metrics.
type Recorder interface {
	ObserveIngested(ok, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveIngested(int, int) {}
