package resumerank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/db"
	dbValkey "github.com/kailas-cloud/resumerank/internal/db/valkey"
	"github.com/kailas-cloud/resumerank/internal/domain"
	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
	domstats "github.com/kailas-cloud/resumerank/internal/domain/stats"
	candidaterepo "github.com/kailas-cloud/resumerank/internal/repository/candidate"
	statsrepo "github.com/kailas-cloud/resumerank/internal/repository/stats"
	expansionuc "github.com/kailas-cloud/resumerank/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/resumerank/internal/usecase/health"
	ingestionuc "github.com/kailas-cloud/resumerank/internal/usecase/ingestion"
	retrievaluc "github.com/kailas-cloud/resumerank/internal/usecase/retrieval"
	screeninguc "github.com/kailas-cloud/resumerank/internal/usecase/screening"
	statsuc "github.com/kailas-cloud/resumerank/internal/usecase/stats"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "resumerank:"
	defaultVectorDimensions = 1536
)

// Internal interfaces for substitution in tests.
type ingestionUseCase interface {
	Ingest(ctx context.Context, items []domcand.Candidate) []dombatch.Result
	Replace(ctx context.Context, items []domcand.Candidate) ([]dombatch.Result, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type retrievalUseCase interface {
	Retrieve(ctx context.Context, req request.Request) (result.Result, error)
}

type screeningUseCase interface {
	Screen(ctx context.Context, req request.Request) (screeninguc.Answer, error)
}

type candidateReader interface {
	Resolve(ctx context.Context, id string) (domcand.Candidate, error)
}

type statsUseCase interface {
	Snapshot(ctx context.Context) (domstats.Snapshot, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the resumerank SDK entry point.
type Client struct {
	store       db.Store
	ingestSvc   ingestionUseCase
	retrieveSvc retrievalUseCase
	screenSvc   screeningUseCase
	candidates  candidateReader
	statsSvc    statsUseCase
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client, connects to the database and makes sure the candidate
// index exists. The provided context bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		vectorDimensions: defaultVectorDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("resumerank: database address required (use WithValkey or WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("resumerank: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("resumerank: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("resumerank: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("resumerank: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := candidaterepo.New(store, candidaterepo.Config{
		KeyPrefix:  cfg.keyPrefix,
		Dimensions: cfg.vectorDimensions,
		HNSW:       db.HNSWParams{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct},
	})
	if err := repo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("resumerank: ensure index: %w", err)
	}

	emb := newEmbedderAdapter(cfg.embedder)

	// A nil interface, not a typed nil pointer, keeps fusion and Screen
	// reporting "not configured".
	var completer domain.Completer
	if cfg.completer != nil {
		completer = &completerAdapter{inner: cfg.completer}
	}

	// Internal services log through zap; SDK callers get slog via the observer.
	logger := zap.NewNop()
	ro := cfg.retrieval

	statsSvc := statsuc.New(statsrepo.New(store, statsrepo.DefaultDailyTTL), cfg.keyPrefix, logger)

	expander := expansionuc.New(completer, expansionuc.Config{
		MaxQueries:      ro.MaxQueries,
		Timeout:         ro.ExpansionTimeout,
		IncludeOriginal: ro.IncludeOriginal,
	}, logger)

	retrieveSvc := retrievaluc.New(
		expander,
		retrievaluc.NewSearcher(emb, repo),
		repo,
		retrievaluc.Config{
			RRFConstant:         ro.RRFConstant,
			TopKPerQuery:        ro.TopKPerQuery,
			TopKFinal:           ro.TopKFinal,
			OriginalQueryWeight: ro.OriginalQueryWeight,
		},
		obs,
		statsSvc,
		logger,
	)

	return &Client{
		store: store,
		ingestSvc: ingestionuc.New(repo, emb, ingestionuc.Config{
			BatchSize: cfg.ingestBatchSize,
			Workers:   cfg.ingestWorkers,
		}, obs, logger),
		retrieveSvc: retrieveSvc,
		screenSvc:   screeninguc.New(retrieveSvc, completer, screeninguc.Config{}, logger),
		candidates:  repo,
		statsSvc:    statsSvc,
		healthSvc:   healthuc.New(store, healthuc.CheckerOf(cfg.embedder), healthuc.CheckerOf(cfg.completer), logger),
		obs:         obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
