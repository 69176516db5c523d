package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
)

// Searcher adds search by raw text to the vector index: the text is embedded
// with the query embedder, then matched by KNN.
type Searcher struct {
	embed Embedder
	index VectorIndex
}

// NewSearcher creates a text searcher.
func NewSearcher(embed Embedder, index VectorIndex) *Searcher {
	return &Searcher{embed: embed, index: index}
}

// SearchText returns at most k hits for text, best match first.
func (s *Searcher) SearchText(ctx context.Context, text string, k int) ([]hit.Hit, error) {
	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.index.Search(ctx, emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return hits, nil
}
