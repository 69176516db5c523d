package candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/resumerank/internal/db"
	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
)

var errConn = errors.New("dial tcp 127.0.0.1:6379: connection refused")

func mustCandidate(t *testing.T, id, text string) domcand.Candidate {
	t.Helper()
	c, err := domcand.New(id, text)
	if err != nil {
		t.Fatalf("candidate.New: %v", err)
	}
	return c
}

func TestEnsureIndex_Definition(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "rr:candidates:idx" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Prefix != "rr:candidate:" {
		t.Errorf("prefix = %q", got.Prefix)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "__id" {
		t.Errorf("tags = %v", got.Tags)
	}
	vec := got.Vector
	if vec.Field != "__vector" || vec.Alias != "vector" || vec.Dim != 4 ||
		vec.Distance != db.DistanceCosine || vec.HNSW.M != 16 || vec.HNSW.EFConstruct != 200 {
		t.Errorf("vector attribute = %+v", vec)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("already-exists should be success, got %v", err)
	}
}

func TestEnsureIndex_StoreDown(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return errConn }

	err := repo.EnsureIndex(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if !errors.Is(err, errConn) {
		t.Error("cause should stay in the chain")
	}
}

func TestEnsureIndex_BadDimensions(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, Config{KeyPrefix: "rr:"})
	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error for zero dimensions")
	}
}

func TestAddMany_WritesHashes(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	err := repo.AddMany(context.Background(), []Item{
		{Candidate: mustCandidate(t, "17", "Go developer, 5 years"), Vector: testVector()},
		{Candidate: mustCandidate(t, "18", "Data engineer"), Vector: testVector()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	if got[0].Key != "rr:candidate:17" {
		t.Errorf("key = %q", got[0].Key)
	}
	if got[0].Fields["__id"] != "17" || got[0].Fields["__content"] != "Go developer, 5 years" {
		t.Errorf("fields = %v", got[0].Fields)
	}
	if got[0].Fields["__vector"] != db.EncodeVector(testVector()) {
		t.Error("vector not encoded as FLOAT32 blob")
	}
}

func TestAddMany_WrongDimensions(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		t.Fatal("store must not be called")
		return nil
	}

	err := repo.Add(context.Background(), mustCandidate(t, "a", "text"), []float32{1, 2})
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestAddMany_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error { return errConn }

	err := repo.Add(context.Background(), mustCandidate(t, "a", "text"), testVector())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestAddBatch(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	cands := []domcand.Candidate{mustCandidate(t, "1", "a"), mustCandidate(t, "2", "b")}
	if err := repo.AddBatch(context.Background(), cands, [][]float32{testVector(), testVector()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Key != "rr:candidate:2" {
		t.Errorf("items = %v", got)
	}

	err := repo.AddBatch(context.Background(), cands, [][]float32{testVector()})
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput for length mismatch, got %v", err)
	}
}

func TestSearch_RanksInOrder(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "rr:candidates:idx" || q.K != 3 {
			t.Errorf("query = %+v", q)
		}
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "rr:candidate:A", Score: 0.9, Fields: map[string]string{"__id": "A"}},
			{Key: "rr:candidate:B", Score: 0.8, Fields: map[string]string{"__id": "B"}},
			{Key: "rr:candidate:C", Score: 0.7, Fields: map[string]string{}},
		}}, nil
	}

	hits, err := repo.Search(context.Background(), testVector(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"A", "B", "C"}
	for i, h := range hits {
		if h.CandidateID != want[i] || h.Rank != i+1 {
			t.Errorf("hit[%d] = %+v", i, h)
		}
	}
	if hits[0].Score != 0.9 {
		t.Errorf("score = %v", hits[0].Score)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	hits, err := repo.Search(context.Background(), testVector(), 5)
	if err != nil {
		t.Fatalf("missing index should yield no hits, got %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %v", hits)
	}
}

func TestSearch_StoreDown(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errConn}
	}

	_, err := repo.Search(context.Background(), testVector(), 5)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSearch_ZeroK(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		t.Fatal("store must not be called")
		return nil, nil
	}
	if hits, err := repo.Search(context.Background(), testVector(), 0); err != nil || hits != nil {
		t.Errorf("got %v, %v", hits, err)
	}
}

func TestResolve(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "rr:candidate:42" {
			return nil, db.ErrKeyNotFound
		}
		return map[string]string{"__id": "42", "__content": "resume text"}, nil
	}

	c, err := repo.Resolve(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "42" || c.Text() != "resume text" {
		t.Errorf("candidate = %s / %s", c.ID(), c.Text())
	}

	_, err = repo.Resolve(context.Background(), "43")
	if !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Errorf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestResolveMany_SkipsMissing(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		return []map[string]string{
			{"__id": "B", "__content": "b"},
			nil,
			{"__id": "A", "__content": "a"},
		}, nil
	}

	found, missing, err := repo.ResolveMany(context.Background(), []string{"B", "X", "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 2 || found[0].ID() != "B" || found[1].ID() != "A" {
		t.Errorf("found = %v", found)
	}
	if len(missing) != 1 || missing[0] != "X" {
		t.Errorf("missing = %v", missing)
	}
}

func TestResolveMany_StoreDown(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return nil, errConn
	}
	if _, _, err := repo.ResolveMany(context.Background(), []string{"a"}); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "rr:candidate:*" {
			t.Errorf("pattern = %q", pattern)
		}
		return []string{"rr:candidate:1", "rr:candidate:2"}, nil
	}

	n, err := repo.Count(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestReset(t *testing.T) {
	repo, ms := newTestRepo(t)

	var dd bool
	ms.dropIndexFn = func(_ context.Context, name string, deleteDocs bool) error {
		dd = deleteDocs
		return nil
	}
	if err := repo.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dd {
		t.Error("reset must delete documents")
	}

	ms.dropIndexFn = func(_ context.Context, _ string, _ bool) error { return db.ErrIndexNotFound }
	if err := repo.Reset(context.Background()); err != nil {
		t.Errorf("reset of a missing index should succeed, got %v", err)
	}

	ms.dropIndexFn = func(_ context.Context, _ string, _ bool) error { return errConn }
	if err := repo.Reset(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}
