package resumerank

import (
	"context"
	"fmt"
)

// Pool is a typed view over the candidate index. Records of type T are
// converted to candidates through their struct tags:
//
//	type Applicant struct {
//	    ID     int    `resumerank:"id"`
//	    Resume string `resumerank:"text"`
//	    Email  string
//	}
//
// Fields without a tag are ignored; only id and text are stored.
type Pool[T any] struct {
	client *Client
	meta   *schemaMeta
}

// NewPool creates a typed pool. The schema of T is parsed once.
func NewPool[T any](client *Client) (*Pool[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	return &Pool[T]{client: client, meta: meta}, nil
}

// Ingest adds or overwrites records.
func (p *Pool[T]) Ingest(ctx context.Context, items []T) ([]IngestResult, error) {
	return p.client.Ingest(ctx, p.candidates(items))
}

// Replace drops every stored candidate and ingests items in their place.
func (p *Pool[T]) Replace(ctx context.Context, items []T) ([]IngestResult, error) {
	return p.client.Replace(ctx, p.candidates(items))
}

// Count returns the number of stored candidates.
func (p *Pool[T]) Count(ctx context.Context) (int, error) {
	return p.client.Count(ctx)
}

// Query starts a fluent retrieval for a job description.
func (p *Pool[T]) Query(jobDescription string) *QueryBuilder {
	return p.client.Query(jobDescription)
}

func (p *Pool[T]) candidates(items []T) []Candidate {
	out := make([]Candidate, len(items))
	for i, it := range items {
		out[i] = p.meta.toCandidate(it)
	}
	return out
}
