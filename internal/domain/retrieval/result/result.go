package result

import (
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
)

// DegradedReason explains why a request ran in a weaker mode than requested.
type DegradedReason string

// Degraded-mode reasons reported in Metadata.
const (
	ReasonNone                DegradedReason = ""
	ReasonExpansionFailed     DegradedReason = "expansion_failed"
	ReasonExpansionTimeout    DegradedReason = "expansion_timeout"
	ReasonProviderAuth        DegradedReason = "provider_auth"
	ReasonProviderRateLimited DegradedReason = "provider_rate_limited"
	ReasonProviderError       DegradedReason = "provider_error"
)

// Candidate is one fused, resolved candidate.
type Candidate struct {
	ID         string
	Text       string
	FusedScore float64
	BestRank   int // lowest rank seen in any per-query list
}

// QueryHits is the ranked hit list a single query produced.
type QueryHits struct {
	Query query.Query
	Hits  []hit.Hit
}

// Metadata describes how a retrieval was performed.
type Metadata struct {
	RequestID      string
	RequestedMode  mode.Mode
	QueryType      mode.Mode // mode actually executed
	Queries        []query.Query
	PerQueryHits   []QueryHits
	Degraded       bool
	DegradedReason DegradedReason
	RRFConstant    int
	TopKPerQuery   int
	TopKFinal      int
}

// HitsFor returns the hit list of the query with the given text.
func (m *Metadata) HitsFor(text string) ([]hit.Hit, bool) {
	for _, qh := range m.PerQueryHits {
		if qh.Query.Text == text {
			return qh.Hits, true
		}
	}
	return nil, false
}

// Result is the fused candidate list with its metadata.
// Candidates never contain the same ID twice.
type Result struct {
	Candidates []Candidate
	Metadata   Metadata
}

// IDs returns candidate IDs in ranked order.
func (r *Result) IDs() []string {
	out := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.ID
	}
	return out
}

// IsEmpty reports whether no candidate matched.
func (r *Result) IsEmpty() bool { return len(r.Candidates) == 0 }
