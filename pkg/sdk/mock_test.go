package resumerank

import (
	"context"

	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
	domstats "github.com/kailas-cloud/resumerank/internal/domain/stats"
	healthuc "github.com/kailas-cloud/resumerank/internal/usecase/health"
	screeninguc "github.com/kailas-cloud/resumerank/internal/usecase/screening"
)

// --- public provider mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockCompleter struct {
	fn func(ctx context.Context, prompt string, maxOutput int) (Completion, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, maxOutput int) (Completion, error) {
	return m.fn(ctx, prompt, maxOutput)
}

// --- use case mocks ---

type mockIngestionUC struct {
	ingestFn  func(ctx context.Context, items []domcand.Candidate) []dombatch.Result
	replaceFn func(ctx context.Context, items []domcand.Candidate) ([]dombatch.Result, error)
	resetFn   func(ctx context.Context) error
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockIngestionUC) Ingest(ctx context.Context, items []domcand.Candidate) []dombatch.Result {
	return m.ingestFn(ctx, items)
}

func (m *mockIngestionUC) Replace(ctx context.Context, items []domcand.Candidate) ([]dombatch.Result, error) {
	return m.replaceFn(ctx, items)
}

func (m *mockIngestionUC) Reset(ctx context.Context) error { return m.resetFn(ctx) }

func (m *mockIngestionUC) Count(ctx context.Context) (int, error) { return m.countFn(ctx) }

type mockRetrievalUC struct {
	fn func(ctx context.Context, req request.Request) (result.Result, error)
}

func (m *mockRetrievalUC) Retrieve(ctx context.Context, req request.Request) (result.Result, error) {
	return m.fn(ctx, req)
}

type mockScreeningUC struct {
	fn func(ctx context.Context, req request.Request) (screeninguc.Answer, error)
}

func (m *mockScreeningUC) Screen(ctx context.Context, req request.Request) (screeninguc.Answer, error) {
	return m.fn(ctx, req)
}

type mockReader struct {
	fn func(ctx context.Context, id string) (domcand.Candidate, error)
}

func (m *mockReader) Resolve(ctx context.Context, id string) (domcand.Candidate, error) {
	return m.fn(ctx, id)
}

type mockStatsUC struct {
	snap domstats.Snapshot
	err  error
}

func (m *mockStatsUC) Snapshot(_ context.Context) (domstats.Snapshot, error) { return m.snap, m.err }

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- in-memory index for wiring tests ---

// memIndex serves fixed rankings per query text and resolves ids from a map.
type memIndex struct {
	rankings map[string][]string
	texts    map[string]string
}

func (m *memIndex) SearchText(_ context.Context, text string, k int) ([]hit.Hit, error) {
	ids := m.rankings[text]
	if len(ids) > k {
		ids = ids[:k]
	}
	return hit.Ranked(ids, nil), nil
}

func (m *memIndex) ResolveMany(_ context.Context, ids []string) ([]domcand.Candidate, []string, error) {
	var found []domcand.Candidate
	var missing []string
	for _, id := range ids {
		if t, ok := m.texts[id]; ok {
			found = append(found, domcand.Reconstruct(id, t))
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}
