package resumerank

import (
	"github.com/kailas-cloud/resumerank/internal/domain/batch"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

// Mode selects the query strategy.
type Mode string

// Retrieval modes.
const (
	// ModeGeneric searches with the job description verbatim.
	ModeGeneric Mode = Mode(mode.Generic)
	// ModeFusion expands the description into sub-queries and fuses their rankings.
	ModeFusion Mode = Mode(mode.Fusion)
)

// Candidate is a resume to ingest.
type Candidate struct {
	ID   string
	Text string
}

// IngestResult is the outcome for one submitted candidate.
type IngestResult struct {
	Position int
	ID       string
	OK       bool
	Err      error
}

// RetrieveRequest describes one retrieval. Zero top-k values use the client defaults.
type RetrieveRequest struct {
	JobDescription string
	Mode           Mode
	TopKPerQuery   int
	TopKFinal      int
}

// RankedCandidate is one fused candidate, best first.
type RankedCandidate struct {
	ID         string
	Text       string
	FusedScore float64
	BestRank   int
}

// Query is one query sent to the index.
type Query struct {
	Text     string
	Position int
}

// Hit is one entry of a per-query ranking.
type Hit struct {
	CandidateID string
	Score       float64
	Rank        int
}

// QueryHits is the ranking one query produced.
type QueryHits struct {
	Query Query
	Hits  []Hit
}

// Metadata describes how a retrieval ran.
type Metadata struct {
	RequestID      string
	RequestedMode  Mode
	QueryType      Mode
	Queries        []Query
	PerQueryHits   []QueryHits
	Degraded       bool
	DegradedReason string
	RRFConstant    int
	TopKPerQuery   int
	TopKFinal      int
}

// Result is a ranked shortlist plus metadata.
type Result struct {
	Candidates []RankedCandidate
	Metadata   Metadata
}

// Answer is a screening answer grounded on a retrieval.
type Answer struct {
	Text             string
	Retrieval        Result
	PromptTokens     int
	CompletionTokens int
}

func ingestFromDomain(results []batch.Result) []IngestResult {
	out := make([]IngestResult, len(results))
	for i, r := range results {
		out[i] = IngestResult{
			Position: r.Position(),
			ID:       r.ID(),
			OK:       r.Status() == batch.StatusOK,
			Err:      r.Err(),
		}
	}
	return out
}

func resultFromDomain(r *result.Result) Result {
	cands := make([]RankedCandidate, len(r.Candidates))
	for i, c := range r.Candidates {
		cands[i] = RankedCandidate{ID: c.ID, Text: c.Text, FusedScore: c.FusedScore, BestRank: c.BestRank}
	}

	md := r.Metadata
	queries := make([]Query, len(md.Queries))
	for i, q := range md.Queries {
		queries[i] = Query{Text: q.Text, Position: q.Position}
	}
	perQuery := make([]QueryHits, len(md.PerQueryHits))
	for i, qh := range md.PerQueryHits {
		hits := make([]Hit, len(qh.Hits))
		for j, h := range qh.Hits {
			hits[j] = Hit{CandidateID: h.CandidateID, Score: h.Score, Rank: h.Rank}
		}
		perQuery[i] = QueryHits{Query: Query{Text: qh.Query.Text, Position: qh.Query.Position}, Hits: hits}
	}

	return Result{
		Candidates: cands,
		Metadata: Metadata{
			RequestID:      md.RequestID,
			RequestedMode:  Mode(md.RequestedMode),
			QueryType:      Mode(md.QueryType),
			Queries:        queries,
			PerQueryHits:   perQuery,
			Degraded:       md.Degraded,
			DegradedReason: string(md.DegradedReason),
			RRFConstant:    md.RRFConstant,
			TopKPerQuery:   md.TopKPerQuery,
			TopKFinal:      md.TopKFinal,
		},
	}
}
