package resumerank

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes the index and the retrieval queries it has served.
type Stats struct {
	Candidates      int           // stored candidates
	Day             string        // UTC day QueriesToday refers to, YYYY-MM-DD
	QueriesToday    int64         // completed retrievals today
	TotalQueries    int64         // completed retrievals overall
	CandidatesFound int64         // candidates returned across all retrievals
	AvgResponseTime time.Duration // mean retrieval latency overall
}

// Stats returns the candidate count and query activity counters.
// Screening counts as a query through the retrieval it runs.
func (c *Client) Stats(ctx context.Context) (_ Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	n, err := c.ingestSvc.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	snap, err := c.statsSvc.Snapshot(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	total := snap.Total()
	return Stats{
		Candidates:      n,
		Day:             snap.Day(),
		QueriesToday:    snap.Today().Queries(),
		TotalQueries:    total.Queries(),
		CandidatesFound: total.Candidates(),
		AvgResponseTime: total.AvgLatency(),
	}, nil
}
