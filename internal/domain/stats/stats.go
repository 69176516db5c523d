package stats

import "time"

// Counters aggregates completed retrieval queries over a period.
type Counters struct {
	queries    int64
	candidates int64
	latency    time.Duration
}

// NewCounters creates a Counters snapshot.
func NewCounters(queries, candidates int64, latency time.Duration) Counters {
	return Counters{queries: queries, candidates: candidates, latency: latency}
}

// Queries returns the number of completed queries.
func (c Counters) Queries() int64 { return c.queries }

// Candidates returns the number of candidates returned across all queries.
func (c Counters) Candidates() int64 { return c.candidates }

// Latency returns the summed query latency.
func (c Counters) Latency() time.Duration { return c.latency }

// AvgLatency returns the mean query latency, zero when nothing ran.
func (c Counters) AvgLatency() time.Duration {
	if c.queries <= 0 {
		return 0
	}
	return c.latency / time.Duration(c.queries)
}

// Snapshot is the query activity for the current UTC day and since the index was created.
type Snapshot struct {
	day   string
	today Counters
	total Counters
}

// NewSnapshot creates a Snapshot. day is formatted as YYYY-MM-DD.
func NewSnapshot(day string, today, total Counters) Snapshot {
	return Snapshot{day: day, today: today, total: total}
}

// Day returns the UTC day the Today counters belong to.
func (s Snapshot) Day() string { return s.day }

// Today returns today's counters.
func (s Snapshot) Today() Counters { return s.today }

// Total returns the all-time counters.
func (s Snapshot) Total() Counters { return s.total }
