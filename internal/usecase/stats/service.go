package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domstats "github.com/kailas-cloud/resumerank/internal/domain/stats"
)

const dayLayout = "2006-01-02"

// Counter names under {prefix}stats:daily:{day}: and {prefix}stats:total:.
const (
	counterQueries    = "queries"
	counterCandidates = "candidates"
	counterLatency    = "latency_us"
)

// Service tracks completed retrieval queries: how many ran today and overall,
// how many candidates they returned and how long they took.
type Service struct {
	store  CounterStore
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// New creates a stats service. keyPrefix is the storage key prefix shared with the candidate index.
func New(store CounterStore, keyPrefix string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, prefix: keyPrefix, now: time.Now, logger: logger}
}

// RecordQuery adds one completed query to today's and the all-time counters.
func (s *Service) RecordQuery(ctx context.Context, candidates int, d time.Duration) error {
	day := s.day()
	incr := []struct {
		name string
		val  int64
	}{
		{counterQueries, 1},
		{counterCandidates, int64(candidates)},
		{counterLatency, d.Microseconds()},
	}
	for _, c := range incr {
		for _, key := range []string{s.dailyKey(day, c.name), s.totalKey(c.name)} {
			if err := s.store.IncrBy(ctx, key, c.val); err != nil {
				return fmt.Errorf("record query: %w", err)
			}
		}
	}
	return nil
}

// Snapshot reads today's and the all-time counters.
func (s *Service) Snapshot(ctx context.Context) (domstats.Snapshot, error) {
	day := s.day()
	today, err := s.load(ctx, func(name string) string { return s.dailyKey(day, name) })
	if err != nil {
		return domstats.Snapshot{}, err
	}
	total, err := s.load(ctx, s.totalKey)
	if err != nil {
		return domstats.Snapshot{}, err
	}
	return domstats.NewSnapshot(day, today, total), nil
}

func (s *Service) load(ctx context.Context, key func(name string) string) (domstats.Counters, error) {
	var vals [3]int64
	for i, name := range []string{counterQueries, counterCandidates, counterLatency} {
		v, err := s.store.Get(ctx, key(name))
		if err != nil {
			return domstats.Counters{}, fmt.Errorf("load query stats: %w", err)
		}
		vals[i] = v
	}
	return domstats.NewCounters(vals[0], vals[1], time.Duration(vals[2])*time.Microsecond), nil
}

func (s *Service) day() string {
	return s.now().UTC().Format(dayLayout)
}

func (s *Service) dailyKey(day, name string) string {
	return s.prefix + "stats:daily:" + day + ":" + name
}

func (s *Service) totalKey(name string) string {
	return s.prefix + "stats:total:" + name
}
