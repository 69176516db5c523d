package resumerank

import (
	"context"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // vector_store, embedding, llm -> "ok"/"error"
}

// Healthy reports whether the vector store is reachable. A degraded provider
// still counts: generic retrieval keeps working without the language model.
func (h HealthStatus) Healthy() bool { return h.Status != "error" }

// Health checks the vector store and, when they support it, the providers.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	c.obs.observe("health", start, nil)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
