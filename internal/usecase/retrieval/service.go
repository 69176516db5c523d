package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/resumerank/internal/domain"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
	logpkg "github.com/kailas-cloud/resumerank/internal/logger"
)

// Config holds fusion defaults.
type Config struct {
	RRFConstant         int     // default 60
	TopKPerQuery        int     // default 10
	TopKFinal           int     // default 5
	OriginalQueryWeight float64 // weight of the verbatim list when the expander includes it; default 1
}

// Service answers retrieval requests: expand, fan out, fuse, resolve.
type Service struct {
	expander Expander
	searcher TextSearcher
	resolver Resolver
	cfg      Config
	rec      Recorder
	stats    QueryStats
	logger   *zap.Logger
}

// New creates a retrieval service. rec and stats may be nil.
func New(
	expander Expander, searcher TextSearcher, resolver Resolver,
	cfg Config, rec Recorder, stats QueryStats, logger *zap.Logger,
) *Service {
	if cfg.RRFConstant <= 0 {
		cfg.RRFConstant = DefaultRRFConstant
	}
	if cfg.TopKPerQuery <= 0 {
		cfg.TopKPerQuery = 10
	}
	if cfg.TopKFinal <= 0 {
		cfg.TopKFinal = 5
	}
	if cfg.OriginalQueryWeight <= 0 {
		cfg.OriginalQueryWeight = 1
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if stats == nil {
		stats = nopStats{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		expander: expander, searcher: searcher, resolver: resolver,
		cfg: cfg, rec: rec, stats: stats, logger: logger,
	}
}

// Retrieve runs one retrieval request.
// An empty index yields an empty result. Expansion failures degrade to GENERIC
// for this request; search and resolve failures fail it.
func (s *Service) Retrieve(ctx context.Context, req request.Request) (result.Result, error) {
	start := time.Now()

	// Re-validate: a zero Request never went through request.New.
	req, err := request.New(req.JobDescription(), req.Mode(), req.TopKPerQuery(), req.TopKFinal())
	if err != nil {
		return result.Result{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	req = req.WithDefaults(s.cfg.TopKPerQuery, s.cfg.TopKFinal)

	md := result.Metadata{
		RequestID:     uuid.NewString(),
		RequestedMode: req.Mode(),
		QueryType:     req.Mode(),
		RRFConstant:   s.cfg.RRFConstant,
		TopKPerQuery:  req.TopKPerQuery(),
		TopKFinal:     req.TopKFinal(),
	}
	log := logpkg.For(ctx, s.logger).With(zap.String("request_id", md.RequestID), zap.String("mode", string(req.Mode())))

	res, err := s.retrieve(ctx, req, &md, log)
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case md.Degraded:
		status = "degraded"
	}
	elapsed := time.Since(start)
	s.rec.ObserveRetrieval(string(md.RequestedMode), string(md.QueryType), status, len(md.Queries), elapsed)
	if err != nil {
		return result.Result{}, err
	}

	// Stats are best effort: a counter failure never fails the request.
	if err := s.stats.RecordQuery(ctx, len(res.Candidates), elapsed); err != nil {
		log.Warn("Failed to record query stats", zap.Error(err))
	}

	log.Info("Retrieval completed",
		zap.String("query_type", string(md.QueryType)),
		zap.Int("queries", len(md.Queries)),
		zap.Int("candidates", len(res.Candidates)),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func (s *Service) retrieve(
	ctx context.Context, req request.Request, md *result.Metadata, log *zap.Logger,
) (result.Result, error) {
	queries, err := s.expand(ctx, req, md, log)
	if err != nil {
		return result.Result{}, err
	}
	md.Queries = queries

	lists, err := s.fanOut(ctx, queries, req.TopKPerQuery())
	if err != nil {
		return result.Result{}, err
	}

	md.PerQueryHits = make([]result.QueryHits, len(queries))
	for i, q := range queries {
		md.PerQueryHits[i] = result.QueryHits{Query: q, Hits: lists[i]}
	}

	// Fuse the full union so ids missing from the store are refilled from the tail.
	ranked := fuseRRF(lists, s.weights(req, md, queries), s.cfg.RRFConstant, 0)
	if len(ranked) == 0 {
		return result.Result{Candidates: []result.Candidate{}, Metadata: *md}, nil
	}

	candidates, err := s.resolve(ctx, ranked, req.TopKFinal(), log)
	if err != nil {
		return result.Result{}, err
	}
	return result.Result{Candidates: candidates, Metadata: *md}, nil
}

// expand returns the queries to run. Expander failures not caused by the
// caller's own context switch the request to GENERIC and mark it degraded.
func (s *Service) expand(
	ctx context.Context, req request.Request, md *result.Metadata, log *zap.Logger,
) ([]query.Query, error) {
	queries, err := s.expander.Expand(ctx, req.JobDescription(), req.Mode())
	if err == nil {
		return queries, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("expand: %w", ctxErr)
	}
	if errors.Is(err, domain.ErrMalformedInput) {
		return nil, fmt.Errorf("expand: %w", err)
	}

	reason := fallbackReason(err)
	md.QueryType = mode.Generic
	md.Degraded = true
	md.DegradedReason = reason
	s.rec.ObserveFallback(string(reason))
	log.Warn("Query expansion failed, falling back to generic retrieval",
		zap.String("reason", string(reason)),
		zap.Error(err),
	)

	return []query.Query{{Text: req.JobDescription(), Position: 1}}, nil
}

func fallbackReason(err error) result.DegradedReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrProviderTimeout):
		return result.ReasonExpansionTimeout
	case errors.Is(err, domain.ErrProviderAuth):
		return result.ReasonProviderAuth
	case errors.Is(err, domain.ErrProviderRateLimited):
		return result.ReasonProviderRateLimited
	case errors.Is(err, domain.ErrProviderError):
		return result.ReasonProviderError
	default:
		return result.ReasonExpansionFailed
	}
}

// fanOut runs one search per query concurrently. Lists are stored by query
// position; the first failure cancels the rest and discards partial results.
func (s *Service) fanOut(ctx context.Context, queries []query.Query, k int) ([][]hit.Hit, error) {
	lists := make([][]hit.Hit, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(queries))
	for i, q := range queries {
		g.Go(func() error {
			hits, err := s.searcher.SearchText(gctx, q.Text, k)
			if err != nil {
				return fmt.Errorf("query %d: %w", q.Position, err)
			}
			lists[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("search: %w", ctxErr)
		}
		return nil, fmt.Errorf("search: %w", err)
	}

	for i := range lists {
		if lists[i] == nil {
			lists[i] = []hit.Hit{}
		}
	}
	return lists, nil
}

func (s *Service) weights(req request.Request, md *result.Metadata, queries []query.Query) []float64 {
	w := make([]float64, len(queries))
	for i := range w {
		w[i] = 1
	}
	if md.QueryType == mode.Fusion && s.expander.IncludesOriginal() &&
		len(queries) > 0 && queries[0].Text == req.JobDescription() {
		w[0] = s.cfg.OriginalQueryWeight
	}
	return w
}

func (s *Service) resolve(ctx context.Context, ranked []fused, want int, log *zap.Logger) ([]result.Candidate, error) {
	out := make([]result.Candidate, 0, min(want, len(ranked)))
	for start := 0; start < len(ranked) && len(out) < want; {
		end := min(start+want-len(out), len(ranked))
		window := ranked[start:end]
		start = end

		ids := make([]string, len(window))
		for i, f := range window {
			ids[i] = f.id
		}
		found, missing, err := s.resolver.ResolveMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve candidates: %w", err)
		}
		if len(missing) > 0 {
			log.Warn("Fused candidates missing from the index store", zap.Strings("ids", missing))
		}

		byID := make(map[string]domcand.Candidate, len(found))
		for _, c := range found {
			byID[c.ID()] = c
		}
		for _, f := range window {
			c, ok := byID[f.id]
			if !ok {
				continue
			}
			out = append(out, result.Candidate{
				ID:         f.id,
				Text:       c.Text(),
				FusedScore: f.score,
				BestRank:   f.bestRank,
			})
		}
	}
	return out, nil
}
