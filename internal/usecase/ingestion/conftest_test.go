package ingestion

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
)

type mockIndex struct {
	mu        sync.Mutex
	ensureErr error
	addErrs   []error // consumed one per AddBatch call
	resetErr  error
	count     int
	stored    map[string]string
	batches   []int
	resets    int
	addDelay  time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newMockIndex() *mockIndex {
	return &mockIndex{stored: make(map[string]string)}
}

func (m *mockIndex) EnsureIndex(_ context.Context) error { return m.ensureErr }

func (m *mockIndex) AddBatch(_ context.Context, cands []domcand.Candidate, vectors [][]float32) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	if n > m.maxInFlight.Load() {
		m.maxInFlight.Store(n)
	}
	if m.addDelay > 0 {
		time.Sleep(m.addDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, len(cands))
	if len(m.addErrs) > 0 {
		err := m.addErrs[0]
		m.addErrs = m.addErrs[1:]
		if err != nil {
			return err
		}
	}
	for i := range cands {
		if len(vectors[i]) == 0 {
			panic("empty vector stored")
		}
		m.stored[cands[i].ID()] = cands[i].Text()
	}
	return nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) { return m.count, nil }

func (m *mockIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	if m.resetErr != nil {
		return m.resetErr
	}
	m.stored = make(map[string]string)
	return nil
}

// mockEmbedder embeds one text at a time; texts listed in errs fail.
type mockEmbedder struct {
	mu    sync.Mutex
	errs  map[string]error
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	if err := m.errs[text]; err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

// mockBatchEmbedder adds a native batch endpoint.
type mockBatchEmbedder struct {
	mockEmbedder
	batchErr   error
	short      bool
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = []float32{float32(len(t)), 2}
	}
	if m.short {
		out.Embeddings = out.Embeddings[:len(texts)-1]
	}
	return out, nil
}

type mockRecorder struct {
	ok, failed int
}

func (m *mockRecorder) ObserveIngested(ok, failed int) {
	m.ok += ok
	m.failed += failed
}
