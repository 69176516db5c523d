package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
)

// Retrieval parameter limits.
const (
	// MaxJobDescriptionLength is the maximum accepted job description size in bytes.
	MaxJobDescriptionLength = 32768
	MaxTopK                 = 100
)

// Request is a validated retrieval request.
// Zero TopKPerQuery/TopKFinal mean "use the service defaults".
type Request struct {
	jobDescription string
	mode           mode.Mode
	topKPerQuery   int
	topKFinal      int
}

// New validates retrieval parameters.
// The description is kept verbatim; it must contain at least one non-space character.
// Values above MaxTopK are clamped; negative values are rejected.
func New(jobDescription string, m mode.Mode, topKPerQuery, topKFinal int) (Request, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Request{}, fmt.Errorf("job description is required")
	}
	if len(jobDescription) > MaxJobDescriptionLength {
		return Request{}, fmt.Errorf("job description too long (max %d bytes)", MaxJobDescriptionLength)
	}
	if m == "" {
		m = mode.Generic
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid retrieval mode: %q", m)
	}
	if topKPerQuery < 0 {
		return Request{}, fmt.Errorf("top_k_per_query must not be negative")
	}
	if topKFinal < 0 {
		return Request{}, fmt.Errorf("top_k_final must not be negative")
	}

	return Request{
		jobDescription: jobDescription,
		mode:           m,
		topKPerQuery:   min(topKPerQuery, MaxTopK),
		topKFinal:      min(topKFinal, MaxTopK),
	}, nil
}

// WithDefaults returns a copy where unset limits take the given defaults.
func (r Request) WithDefaults(topKPerQuery, topKFinal int) Request {
	if r.topKPerQuery == 0 {
		r.topKPerQuery = topKPerQuery
	}
	if r.topKFinal == 0 {
		r.topKFinal = topKFinal
	}
	return r
}

// JobDescription returns the verbatim job description.
func (r *Request) JobDescription() string { return r.jobDescription }

// Mode returns the requested retrieval mode.
func (r *Request) Mode() mode.Mode { return r.mode }

// TopKPerQuery returns how many hits to request from the index per query.
func (r *Request) TopKPerQuery() int { return r.topKPerQuery }

// TopKFinal returns how many fused candidates to return.
func (r *Request) TopKFinal() int { return r.topKFinal }
