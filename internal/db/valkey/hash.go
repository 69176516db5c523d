package valkey

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/resumerank/internal/db"
)

const scanBatch = 500

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Key: items[i].Key, Err: err}
		}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// HGetAllMulti fetches multiple hashes in one round-trip. Missing keys yield nil maps
// at their positions.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Key: keys[i], Err: err}
		}
		if len(m) > 0 {
			out[i] = m
		}
	}
	return out, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.do(ctx, s.b().Del().Key(key).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Key: key, Err: err}
	}
	return nil
}

// Scan iterates keys matching a pattern until the cursor wraps.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
