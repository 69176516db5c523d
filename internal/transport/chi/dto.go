package chi

import (
	"encoding/json"

	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
	domstats "github.com/kailas-cloud/resumerank/internal/domain/stats"
	healthuc "github.com/kailas-cloud/resumerank/internal/usecase/health"
	screeninguc "github.com/kailas-cloud/resumerank/internal/usecase/screening"
	"github.com/kailas-cloud/resumerank/internal/version"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RetrieveRequest is the body of POST /v1/retrieve and POST /v1/screen.
type RetrieveRequest struct {
	JobDescription string `json:"job_description"`
	Mode           string `json:"mode,omitempty"`
	TopKPerQuery   *int   `json:"top_k_per_query,omitempty"`
	TopKFinal      *int   `json:"top_k_final,omitempty"`
}

// CandidateItem is the body of GET /v1/candidates/{id}.
type CandidateItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// IngestItem is one submitted candidate. The id may be a JSON string or integer.
type IngestItem struct {
	ID   json.RawMessage `json:"id"`
	Text string          `json:"text"`
}

// IngestRequest is the body of POST and PUT /v1/candidates.
type IngestRequest struct {
	Candidates []IngestItem `json:"candidates"`
}

// IngestResultItem reports the outcome for one submitted candidate.
type IngestResultItem struct {
	Position int            `json:"position"`
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

// IngestResponse lists per-item outcomes.
type IngestResponse struct {
	Items     []IngestResultItem `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// RankedCandidate is one fused candidate.
type RankedCandidate struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	FusedScore float64 `json:"fused_score"`
	BestRank   int     `json:"best_rank"`
}

// QueryHits is the ranked list one query produced.
type QueryHits struct {
	Query query.Query `json:"query"`
	Hits  []hit.Hit   `json:"hits"`
}

// RetrievalMetadata describes how a retrieval was performed.
type RetrievalMetadata struct {
	RequestID      string        `json:"request_id"`
	RequestedMode  string        `json:"requested_mode"`
	QueryType      string        `json:"query_type"`
	Queries        []query.Query `json:"queries"`
	PerQueryHits   []QueryHits   `json:"per_query_hits"`
	Degraded       bool          `json:"degraded"`
	DegradedReason string        `json:"degraded_reason,omitempty"`
	RRFConstant    int           `json:"rrf_constant"`
	TopKPerQuery   int           `json:"top_k_per_query"`
	TopKFinal      int           `json:"top_k_final"`
}

// RetrieveResponse is the body of a successful POST /v1/retrieve.
type RetrieveResponse struct {
	Candidates []RankedCandidate `json:"candidates"`
	Metadata   RetrievalMetadata `json:"metadata"`
}

// TokenUsage reports language-model token usage.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ScreenResponse is the body of a successful POST /v1/screen.
type ScreenResponse struct {
	Answer    string           `json:"answer"`
	Retrieval RetrieveResponse `json:"retrieval"`
	Usage     TokenUsage       `json:"usage"`
}

// StatsResponse is the body of GET /v1/stats.
type StatsResponse struct {
	Candidates      int     `json:"candidates"`
	Day             string  `json:"day"`
	QueriesToday    int64   `json:"queries_today"`
	TotalQueries    int64   `json:"total_queries"`
	CandidatesFound int64   `json:"candidates_found"`
	AvgResponseMs   float64 `json:"avg_response_ms"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func statsToDTO(candidates int, snap *domstats.Snapshot) StatsResponse {
	total := snap.Total()
	return StatsResponse{
		Candidates:      candidates,
		Day:             snap.Day(),
		QueriesToday:    snap.Today().Queries(),
		TotalQueries:    total.Queries(),
		CandidatesFound: total.Candidates(),
		AvgResponseMs:   float64(total.AvgLatency().Microseconds()) / 1000,
	}
}

func retrieveToDTO(r *result.Result) RetrieveResponse {
	cands := make([]RankedCandidate, len(r.Candidates))
	for i, c := range r.Candidates {
		cands[i] = RankedCandidate{ID: c.ID, Text: c.Text, FusedScore: c.FusedScore, BestRank: c.BestRank}
	}

	md := r.Metadata
	perQuery := make([]QueryHits, len(md.PerQueryHits))
	for i, qh := range md.PerQueryHits {
		hits := qh.Hits
		if hits == nil {
			hits = []hit.Hit{}
		}
		perQuery[i] = QueryHits{Query: qh.Query, Hits: hits}
	}
	queries := md.Queries
	if queries == nil {
		queries = []query.Query{}
	}

	return RetrieveResponse{
		Candidates: cands,
		Metadata: RetrievalMetadata{
			RequestID:      md.RequestID,
			RequestedMode:  string(md.RequestedMode),
			QueryType:      string(md.QueryType),
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

func screenToDTO(a *screeninguc.Answer) ScreenResponse {
	return ScreenResponse{
		Answer:    a.Text,
		Retrieval: retrieveToDTO(&a.Retrieval),
		Usage:     TokenUsage{PromptTokens: a.PromptTokens, CompletionTokens: a.CompletionTokens},
	}
}

func ingestToDTO(results []dombatch.Result) IngestResponse {
	items := make([]IngestResultItem, len(results))
	for i, r := range results {
		items[i] = IngestResultItem{Position: r.Position(), ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			_, code, msg := classify(r.Err())
			items[i].Error = &ErrorResponse{Code: code, Message: msg}
		}
	}
	ok, failed := dombatch.Count(results)
	return IngestResponse{Items: items, Succeeded: ok, Failed: failed}
}

func healthToDTO(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Version: version.Version, Checks: checks}
}
