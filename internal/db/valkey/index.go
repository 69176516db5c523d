package valkey

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/resumerank/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary(db.OpCreateIndex).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isServerErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Key: def.Name, Err: err}
	}
	return nil
}

// DropIndex removes an FT index. With deleteDocs the indexed hashes go too.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	args := []string{name}
	if deleteDocs {
		args = append(args, "DD")
	}
	cmd := s.b().Arbitrary(db.OpDropIndex).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Key: name, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary(db.OpIndexInfo).Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Key: name, Err: err}
	}
	return true, nil
}

// buildCreateArgs renders FT.CREATE arguments:
// name ON HASH [PREFIX 1 p] SCHEMA tag... TAG vec [AS alias] VECTOR HNSW n attrs...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index %q: %w", def.Name, err)
	}

	args := []string{def.Name, "ON", "HASH"}
	if def.Prefix != "" {
		args = append(args, "PREFIX", "1", def.Prefix)
	}
	args = append(args, "SCHEMA")
	for _, tag := range def.Tags {
		args = append(args, tag, "TAG")
	}
	return append(args, vectorArgs(&def.Vector)...), nil
}

func vectorArgs(v *db.VectorAttr) []string {
	distance := v.Distance
	if distance == "" {
		distance = db.DistanceCosine
	}
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	for _, p := range []struct {
		name  string
		value int
	}{
		{"M", v.HNSW.M},
		{"EF_CONSTRUCTION", v.HNSW.EFConstruct},
		{"EF_RUNTIME", v.HNSW.EFRuntime},
	} {
		if p.value > 0 {
			attrs = append(attrs, p.name, strconv.Itoa(p.value))
		}
	}

	out := []string{v.Field}
	if v.Alias != "" {
		out = append(out, "AS", v.Alias)
	}
	out = append(out, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}
