package retrieval

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
)

type mockExpander struct {
	texts           []string
	err             error
	includeOriginal bool
	calls           int
}

func (m *mockExpander) Expand(_ context.Context, jd string, md mode.Mode) ([]query.Query, error) {
	m.calls++
	if md == mode.Generic {
		return []query.Query{{Text: jd, Position: 1}}, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	return query.FromTexts(m.texts), nil
}

func (m *mockExpander) IncludesOriginal() bool { return m.includeOriginal }

// mockSearcher returns a fixed list per query text. Texts listed in block wait
// for cancellation; texts listed in errs fail immediately.
type mockSearcher struct {
	mu        sync.Mutex
	lists     map[string][]string
	errs      map[string]error
	block     map[string]bool
	delay     map[string]time.Duration
	ks        []int
	cancelled int
}

func (m *mockSearcher) SearchText(ctx context.Context, text string, k int) ([]hit.Hit, error) {
	m.mu.Lock()
	m.ks = append(m.ks, k)
	m.mu.Unlock()

	if d := m.delay[text]; d > 0 {
		time.Sleep(d)
	}
	if m.block[text] {
		<-ctx.Done()
		m.mu.Lock()
		m.cancelled++
		m.mu.Unlock()
		return nil, ctx.Err()
	}
	if err := m.errs[text]; err != nil {
		return nil, err
	}
	ids := m.lists[text]
	if len(ids) > k {
		ids = ids[:k]
	}
	return hit.Ranked(ids, nil), nil
}

type mockResolver struct {
	records map[string]string
	err     error
	asked   [][]string
}

func (m *mockResolver) ResolveMany(_ context.Context, ids []string) ([]domcand.Candidate, []string, error) {
	m.asked = append(m.asked, ids)
	if m.err != nil {
		return nil, nil, m.err
	}
	var found []domcand.Candidate
	var missing []string
	for _, id := range ids {
		text, ok := m.records[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, domcand.Reconstruct(id, text))
	}
	return found, missing, nil
}

func resumes(ids ...string) *mockResolver {
	m := &mockResolver{records: make(map[string]string, len(ids))}
	for _, id := range ids {
		m.records[id] = "resume of " + id
	}
	return m
}

type mockRecorder struct {
	mu        sync.Mutex
	statuses  []string
	queryType []string
	queries   []int
	fallbacks []string
}

func (m *mockRecorder) ObserveRetrieval(_, queryType, status string, queries int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	m.queryType = append(m.queryType, queryType)
	m.queries = append(m.queries, queries)
}

func (m *mockRecorder) ObserveFallback(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, reason)
}

type mockEmbedder struct {
	vec  []float32
	err  error
	text string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.text = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

type mockIndex struct {
	hits []hit.Hit
	err  error
	vec  []float32
	k    int
}

func (m *mockIndex) Search(_ context.Context, vector []float32, k int) ([]hit.Hit, error) {
	m.vec, m.k = vector, k
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type mockQueryStats struct {
	err        error
	calls      int
	candidates int
	latency    time.Duration
}

func (m *mockQueryStats) RecordQuery(_ context.Context, candidates int, d time.Duration) error {
	m.calls++
	m.candidates += candidates
	m.latency += d
	return m.err
}
