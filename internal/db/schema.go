package db

import (
	"errors"
	"fmt"
)

// DistanceMetric names the similarity function of a vector attribute.
type DistanceMetric string

// DistanceCosine is the only metric candidates are indexed with; KNN scores are 1-distance.
const DistanceCosine DistanceMetric = "COSINE"

// HNSWParams tunes the HNSW graph. Zero fields leave the server default in place.
type HNSWParams struct {
	M           int
	EFConstruct int
	EFRuntime   int
}

// VectorAttr is the FLOAT32 vector attribute of an index.
type VectorAttr struct {
	Field    string // hash field holding the encoded vector
	Alias    string // name used in KNN clauses
	Dim      int
	Distance DistanceMetric
	HNSW     HNSWParams
}

// IndexDefinition is a HASH-backed FT index: exact-match tag fields plus one vector attribute.
type IndexDefinition struct {
	Name   string
	Prefix string
	Tags   []string
	Vector VectorAttr
}

// Validate checks the definition before it is sent to FT.CREATE.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if d.Vector.Field == "" {
		return errors.New("vector field is required")
	}
	if d.Vector.Dim <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", d.Vector.Dim)
	}

	seen := map[string]bool{d.Vector.Field: true}
	if d.Vector.Alias != "" {
		seen[d.Vector.Alias] = true
	}
	for _, tag := range d.Tags {
		if tag == "" {
			return errors.New("empty tag field")
		}
		if seen[tag] {
			return fmt.Errorf("duplicate field %q", tag)
		}
		seen[tag] = true
	}
	return nil
}

// VectorAlias is the name KNN clauses reference.
func (d *IndexDefinition) VectorAlias() string {
	if d.Vector.Alias != "" {
		return d.Vector.Alias
	}
	return d.Vector.Field
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}

// IndexBuilder assembles an IndexDefinition fluently.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to hashes whose key starts with prefix.
func (b *IndexBuilder) Prefix(prefix string) *IndexBuilder {
	b.def.Prefix = prefix
	return b
}

// Tag adds exact-match tag fields.
func (b *IndexBuilder) Tag(fields ...string) *IndexBuilder {
	b.def.Tags = append(b.def.Tags, fields...)
	return b
}

// Vector sets the cosine vector attribute.
func (b *IndexBuilder) Vector(field, alias string, dim int) *IndexBuilder {
	b.def.Vector = VectorAttr{Field: field, Alias: alias, Dim: dim, Distance: DistanceCosine}
	return b
}

// HNSW sets graph parameters on the vector attribute.
func (b *IndexBuilder) HNSW(p HNSWParams) *IndexBuilder {
	b.def.Vector.HNSW = p
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	def := b.def
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
