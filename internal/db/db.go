package db

import (
	"context"
	"time"
)

// Store is the database facade the composition root hands out.
// Consumers declare the narrow subset they need.
type Store interface {
	Pinger
	HashStore
	KVStore
	CounterStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash operations; candidate records live in hashes.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	// Scan returns every key matching a glob pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides plain key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CounterStore provides integer counters with optional expiry (usage stats).
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	// Expire sets a TTL on key; with nx it only applies when the key has none yet.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	// DropIndex removes the index; deleteDocs also removes every indexed hash (FT.DROPINDEX DD).
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides vector search over FT indexes.
// A missing index is reported as ErrIndexNotFound.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
