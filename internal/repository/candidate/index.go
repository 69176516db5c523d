package candidate

import "github.com/kailas-cloud/resumerank/internal/db"

// Hash field names of a stored candidate.
const (
	fieldID      = "__id"
	fieldContent = "__content"
	fieldVector  = "__vector"
	vectorAlias  = "vector"
)

// Config describes where candidates live and how the vector field is indexed.
type Config struct {
	// KeyPrefix namespaces every key, e.g. "resumerank:".
	KeyPrefix  string
	Dimensions int
	HNSW       db.HNSWParams
}

func (c Config) indexName() string { return c.KeyPrefix + "candidates:idx" }

func (c Config) keyPrefix() string { return c.KeyPrefix + "candidate:" }

func (c Config) key(id string) string { return c.keyPrefix() + id }

// buildIndex returns the FT index over candidate hashes: TAG id plus HNSW/COSINE vector.
func buildIndex(cfg Config) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(cfg.indexName()).
		Prefix(cfg.keyPrefix()).
		Tag(fieldID).
		Vector(fieldVector, vectorAlias, cfg.Dimensions).
		HNSW(cfg.HNSW).
		Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // validation message is self-describing
	}
	return def, nil
}
