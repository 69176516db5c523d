package screening

import (
	"context"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

// Retriever returns the fused candidate list for a request.
type Retriever interface {
	Retrieve(ctx context.Context, req request.Request) (result.Result, error)
}

// Completer generates the recommendation text.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error)
}
