package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/resumerank/internal/domain"
	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
)

// MaxItems is the maximum number of candidates accepted by one call.
const MaxItems = 10000

// Config controls batching.
type Config struct {
	BatchSize int // candidates per embed+store round (default 64)
	Workers   int // concurrent Embed calls when the embedder has no batch endpoint (default 4)
}

// Service loads resumes into the vector index. Writes are serialized; the index
// is read-only for retrieval while no ingestion runs.
type Service struct {
	mu     sync.Mutex
	index  Index
	embed  Embedder
	cfg    Config
	rec    Recorder
	logger *zap.Logger
}

// New creates an ingestion service. rec may be nil.
func New(index Index, embed Embedder, cfg Config, rec Recorder, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, embed: embed, cfg: cfg, rec: rec, logger: logger}
}

// Ingest adds candidates to the index and reports one result per input item.
// Existing ids are overwritten. Within one call the first occurrence of an id wins.
func (s *Service) Ingest(ctx context.Context, items []domcand.Candidate) []dombatch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingest(ctx, items)
}

// Replace drops the whole index with its documents, then ingests items.
// A request that cannot produce a single stored candidate is rejected with
// domain.ErrMalformedInput and leaves the index untouched.
func (s *Service) Replace(ctx context.Context, items []domcand.Candidate) ([]dombatch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(items) == 0:
		return nil, fmt.Errorf("replace with no candidates: %w", domain.ErrMalformedInput)
	case len(items) > MaxItems:
		return nil, fmt.Errorf("too many candidates (max %d): %w", MaxItems, domain.ErrMalformedInput)
	}
	if valid := s.validate(items, make([]dombatch.Result, len(items))); len(valid) == 0 {
		return nil, fmt.Errorf("replace with no valid candidates: %w", domain.ErrMalformedInput)
	}

	if err := s.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}
	s.logger.Info("Candidate index reset for re-ingestion", zap.Int("items", len(items)))
	return s.ingest(ctx, items), nil
}

// Reset drops the index and every stored candidate.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	s.logger.Info("Candidate index reset")
	return nil
}

// Count returns the number of stored candidates.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return n, nil
}

func (s *Service) ingest(ctx context.Context, items []domcand.Candidate) []dombatch.Result {
	start := time.Now()
	results := make([]dombatch.Result, len(items))

	if len(items) > MaxItems {
		err := fmt.Errorf("too many candidates (max %d): %w", MaxItems, domain.ErrMalformedInput)
		return s.finish(failAll(results, items, err), start)
	}
	if len(items) == 0 {
		return results
	}

	if err := s.index.EnsureIndex(ctx); err != nil {
		return s.finish(failAll(results, items, fmt.Errorf("ensure index: %w", err)), start)
	}

	valid := s.validate(items, results)

	for lo := 0; lo < len(valid); lo += s.cfg.BatchSize {
		hi := min(lo+s.cfg.BatchSize, len(valid))
		if cascade := s.ingestBatch(ctx, items, valid[lo:hi], results); cascade != nil {
			for _, i := range valid[hi:] {
				results[i] = dombatch.NewError(i, items[i].ID(), cascade)
			}
			break
		}
	}

	return s.finish(results, start)
}

// validate fills error results for rejected items and returns the positions of the rest.
func (s *Service) validate(items []domcand.Candidate, results []dombatch.Result) []int {
	seen := make(map[string]bool, len(items))
	valid := make([]int, 0, len(items))

	for i := range items {
		c, err := domcand.New(items[i].ID(), items[i].Text())
		if err != nil {
			results[i] = dombatch.NewError(i, items[i].ID(), fmt.Errorf("%w: %w", domain.ErrMalformedInput, err))
			continue
		}
		if seen[c.ID()] {
			results[i] = dombatch.NewError(i, c.ID(),
				fmt.Errorf("duplicate candidate ID %q in request: %w", c.ID(), domain.ErrMalformedInput))
			continue
		}
		seen[c.ID()] = true
		valid = append(valid, i)
	}
	return valid
}

// ingestBatch embeds and stores items[pos] for every pos in batch.
// A non-nil return is a provider failure that must fail every remaining item.
func (s *Service) ingestBatch(
	ctx context.Context, items []domcand.Candidate, batch []int, results []dombatch.Result,
) error {
	texts := make([]string, len(batch))
	for j, i := range batch {
		texts[j] = items[i].Text()
	}

	vectors, errs, cascade := s.vectorize(ctx, texts)

	cands := make([]domcand.Candidate, 0, len(batch))
	vecs := make([][]float32, 0, len(batch))
	stored := make([]int, 0, len(batch))
	for j, i := range batch {
		if errs[j] != nil {
			results[i] = dombatch.NewError(i, items[i].ID(), errs[j])
			continue
		}
		cands = append(cands, items[i])
		vecs = append(vecs, vectors[j])
		stored = append(stored, i)
	}

	if len(stored) > 0 {
		if err := s.index.AddBatch(ctx, cands, vecs); err != nil {
			for _, i := range stored {
				results[i] = dombatch.NewError(i, items[i].ID(), fmt.Errorf("store: %w", err))
			}
		} else {
			for _, i := range stored {
				results[i] = dombatch.NewOK(i, items[i].ID())
			}
		}
	}

	return cascade
}

// vectorize embeds texts with the native batch endpoint when there is one,
// otherwise with a bounded pool of single Embed calls.
func (s *Service) vectorize(ctx context.Context, texts []string) ([][]float32, []error, error) {
	errs := make([]error, len(texts))

	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err == nil && len(res.Embeddings) != len(texts) {
			err = fmt.Errorf("got %d embeddings for %d texts: %w",
				len(res.Embeddings), len(texts), domain.ErrProviderError)
		}
		if err != nil {
			err = fmt.Errorf("vectorize: %w", err)
			for j := range errs {
				errs[j] = err
			}
			if isCascade(err) {
				return nil, errs, err
			}
			return nil, errs, nil
		}
		return res.Embeddings, errs, nil
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for j, text := range texts {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, text)
			if err != nil {
				errs[j] = fmt.Errorf("vectorize: %w", err)
				if isCascade(err) {
					return errs[j]
				}
				return nil
			}
			vectors[j] = res.Embedding
			return nil
		})
	}

	cascade := g.Wait()
	if cascade != nil {
		// Calls cut short by the cascade report the provider failure, not the cancellation.
		for j := range texts {
			if vectors[j] == nil && (errs[j] == nil || errors.Is(errs[j], context.Canceled)) {
				errs[j] = cascade
			}
		}
	}
	return vectors, errs, cascade
}

func (s *Service) finish(results []dombatch.Result, start time.Time) []dombatch.Result {
	ok, failed := dombatch.Count(results)
	s.rec.ObserveIngested(ok, failed)

	log := s.logger.Info
	if failed > 0 {
		log = s.logger.Warn
	}
	log("Candidates ingested",
		zap.Int("ok", ok),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	return results
}

func failAll(results []dombatch.Result, items []domcand.Candidate, err error) []dombatch.Result {
	for i := range items {
		results[i] = dombatch.NewError(i, items[i].ID(), err)
	}
	return results
}

// isCascade reports provider failures that will hit every following call too.
func isCascade(err error) bool {
	return errors.Is(err, domain.ErrProviderAuth) || errors.Is(err, domain.ErrProviderRateLimited)
}
