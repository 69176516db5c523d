package candidate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/resumerank/internal/db"
	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
)

// store is the consumer interface for the candidate index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Item pairs a candidate with its document embedding.
type Item struct {
	Candidate domcand.Candidate
	Vector    []float32
}

// Repo is the vector index of candidate resumes.
type Repo struct {
	store store
	cfg   Config
}

// New creates a candidate repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg)
	if err != nil {
		return fmt.Errorf("build candidate index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return unavailable("create index", err)
	}
	return nil
}

// Add stores one candidate with its vector.
func (r *Repo) Add(ctx context.Context, c domcand.Candidate, vector []float32) error {
	return r.AddMany(ctx, []Item{{Candidate: c, Vector: vector}})
}

// AddBatch stores cands[i] with vectors[i].
func (r *Repo) AddBatch(ctx context.Context, cands []domcand.Candidate, vectors [][]float32) error {
	if len(cands) != len(vectors) {
		return fmt.Errorf("%d candidates but %d vectors: %w", len(cands), len(vectors), domain.ErrMalformedInput)
	}
	items := make([]Item, len(cands))
	for i := range cands {
		items[i] = Item{Candidate: cands[i], Vector: vectors[i]}
	}
	return r.AddMany(ctx, items)
}

// AddMany stores candidates in one pipelined round-trip. Existing ids are overwritten.
func (r *Repo) AddMany(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	hashes := make([]db.HashSetItem, len(items))
	for i := range items {
		c := &items[i].Candidate
		if len(items[i].Vector) != r.cfg.Dimensions {
			return fmt.Errorf("candidate %s: vector has %d dimensions, index expects %d: %w",
				c.ID(), len(items[i].Vector), r.cfg.Dimensions, domain.ErrMalformedInput)
		}
		hashes[i] = db.HashSetItem{
			Key: r.cfg.key(c.ID()),
			Fields: map[string]string{
				fieldID:      c.ID(),
				fieldContent: c.Text(),
				fieldVector:  db.EncodeVector(items[i].Vector),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, hashes); err != nil {
		return unavailable(fmt.Sprintf("store %d candidates", len(items)), err)
	}
	return nil
}

// Search returns the k nearest candidates to vector, best match first with ranks 1..n.
// An index that was never created yields no hits.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]hit.Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.indexName(),
		VectorAlias:  vectorAlias,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldID},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, unavailable("search", err)
	}

	ids := make([]string, 0, len(sr.Entries))
	scores := make([]float64, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[fieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, r.cfg.keyPrefix())
		}
		ids = append(ids, id)
		scores = append(scores, e.Score)
	}

	return hit.Ranked(ids, scores), nil
}

// Resolve loads one candidate by id.
func (r *Repo) Resolve(ctx context.Context, id string) (domcand.Candidate, error) {
	m, err := r.store.HGetAll(ctx, r.cfg.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcand.Candidate{}, fmt.Errorf("candidate %s: %w", id, domain.ErrCandidateNotFound)
		}
		return domcand.Candidate{}, unavailable("resolve "+id, err)
	}
	return fromHash(id, m), nil
}

// ResolveMany loads candidates in the order of ids. Ids with no stored record are
// returned in missing and left out of the result.
func (r *Repo) ResolveMany(ctx context.Context, ids []string) ([]domcand.Candidate, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.cfg.key(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, nil, unavailable(fmt.Sprintf("resolve %d candidates", len(ids)), err)
	}

	found := make([]domcand.Candidate, 0, len(ids))
	var missing []string
	for i, m := range maps {
		if m == nil {
			missing = append(missing, ids[i])
			continue
		}
		found = append(found, fromHash(ids[i], m))
	}
	return found, missing, nil
}

// Count returns the number of stored candidates.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.cfg.keyPrefix()+"*")
	if err != nil {
		return 0, unavailable("count", err)
	}
	return len(keys), nil
}

// Reset drops the index together with every stored candidate.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.cfg.indexName(), true); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return unavailable("drop index", err)
	}
	return nil
}

func fromHash(id string, m map[string]string) domcand.Candidate {
	if stored := m[fieldID]; stored != "" {
		id = stored
	}
	return domcand.Reconstruct(id, m[fieldContent])
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
}
