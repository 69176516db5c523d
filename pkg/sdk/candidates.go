package resumerank

import (
	"context"
	"fmt"
	"time"

	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
)

// Ingest embeds and stores candidates. Existing ids are overwritten.
// Each item gets its own result; an invalid or failed item does not stop the rest.
func (c *Client) Ingest(ctx context.Context, items []Candidate) (_ []IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	return ingestFromDomain(c.ingestSvc.Ingest(ctx, toDomain(items))), nil
}

// Replace drops every stored candidate and ingests items in their place.
func (c *Client) Replace(ctx context.Context, items []Candidate) (_ []IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("replace", start, err) }()

	results, err := c.ingestSvc.Replace(ctx, toDomain(items))
	if err != nil {
		return nil, fmt.Errorf("replace: %w", err)
	}
	return ingestFromDomain(results), nil
}

// Reset removes every stored candidate.
func (c *Client) Reset(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset", start, err) }()

	if err = c.ingestSvc.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Count returns the number of stored candidates.
func (c *Client) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	n, err := c.ingestSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Candidate loads one stored candidate. Unknown ids return ErrCandidateNotFound.
func (c *Client) Candidate(ctx context.Context, id string) (_ Candidate, err error) {
	start := time.Now()
	defer func() { c.obs.observe("candidate", start, err) }()

	cand, err := c.candidates.Resolve(ctx, id)
	if err != nil {
		return Candidate{}, fmt.Errorf("candidate %q: %w", id, err)
	}
	return Candidate{ID: cand.ID(), Text: cand.Text()}, nil
}

func toDomain(items []Candidate) []domcand.Candidate {
	out := make([]domcand.Candidate, len(items))
	for i, it := range items {
		out[i] = domcand.Reconstruct(it.ID, it.Text)
	}
	return out
}
