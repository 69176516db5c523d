package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/resumerank/internal/db"
)

// DefaultDailyTTL keeps yesterday's counters readable across a UTC day boundary.
const DefaultDailyTTL = 48 * time.Hour

// store is the consumer interface for counter operations.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps integer counters in the database (INCRBY + GET).
// Keys containing ":daily:" expire after dailyTTL; every other key is permanent.
type Store struct {
	store    store
	dailyTTL time.Duration
}

// New creates a counter store. A non-positive dailyTTL uses DefaultDailyTTL.
func New(s store, dailyTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	return &Store{store: s, dailyTTL: dailyTTL}
}

// IncrBy atomically increments the key and, for daily keys, sets its TTL.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("stats INCRBY %s: %w", key, err)
	}
	if !isDaily(key) {
		return nil
	}

	// NX: the first increment of the day starts the clock, later ones leave it.
	if err := s.store.Expire(ctx, key, s.dailyTTL, true); err != nil {
		return fmt.Errorf("stats EXPIRE %s: %w", key, err)
	}
	return nil
}

// Get returns the counter value, 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("stats GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stats GET %s parse: %w", key, err)
	}
	return val, nil
}

func isDaily(key string) bool {
	return strings.Contains(key, ":daily:")
}
