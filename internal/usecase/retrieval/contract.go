package retrieval

import (
	"context"
	"time"

	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
)

// Expander turns a job description into retrieval queries.
type Expander interface {
	Expand(ctx context.Context, jobDescription string, m mode.Mode) ([]query.Query, error)
	IncludesOriginal() bool
}

// TextSearcher runs a similarity search for raw query text, best match first.
type TextSearcher interface {
	SearchText(ctx context.Context, text string, k int) ([]hit.Hit, error)
}

// Resolver loads full candidate records for fused ids.
// Ids without a record are returned in missing.
type Resolver interface {
	ResolveMany(ctx context.Context, ids []string) (found []domcand.Candidate, missing []string, err error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex is the KNN side of the candidate index.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]hit.Hit, error)
}

// Recorder receives retrieval metrics.
type Recorder interface {
	ObserveRetrieval(requestedMode, queryType, status string, queries int, d time.Duration)
	ObserveFallback(reason string)
}

// QueryStats counts completed queries for the stats endpoint.
type QueryStats interface {
	RecordQuery(ctx context.Context, candidates int, d time.Duration) error
}

type nopRecorder struct{}

func (nopRecorder) ObserveRetrieval(string, string, string, int, time.Duration) {}
func (nopRecorder) ObserveFallback(string)                                      {}

type nopStats struct{}

func (nopStats) RecordQuery(context.Context, int, time.Duration) error { return nil }
