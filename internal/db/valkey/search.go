package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/resumerank/internal/db"
)

const scoreField = "__vector_score"

// unscoredDistance ranks entries without a parsable score after every real
// cosine distance, which lies in [0, 2].
const unscoredDistance = 2.0

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entries come back nearest first with Score = 1 - cosine distance.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	alias := q.VectorAlias
	if alias == "" {
		alias = "vector"
	}
	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", q.K, alias)

	args := []string{q.IndexName, queryStr}
	if len(q.ReturnFields) > 0 {
		fields := append([]string{scoreField}, q.ReturnFields...)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}
	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", db.EncodeVector(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary(db.OpSearch).Args(args...).Build()).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Key: q.IndexName, Err: err}
	}

	return parseKNNResult(raw)
}

// parseKNNResult reads the RESP2 reply [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	distances := make(map[string]float64, cap(entries))
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		d := unscoredDistance
		if scoreStr, ok := entry.Fields[scoreField]; ok {
			if parsed, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				d = parsed
			}
			delete(entry.Fields, scoreField)
		}
		distances[key] = d
		entry.Score = 1.0 - d
		entries = append(entries, entry)
	}

	// Reply order is not guaranteed to follow distance without SORTBY, which
	// valkey-search does not accept on KNN queries.
	sort.SliceStable(entries, func(a, b int) bool {
		da, dr := distances[entries[a].Key], distances[entries[b].Key]
		if da != dr {
			return da < dr
		}
		return entries[a].Key < entries[b].Key
	})

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
