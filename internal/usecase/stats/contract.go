package stats

import "context"

// CounterStore reads and increments integer counters.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}
