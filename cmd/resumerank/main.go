package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/config"
	"github.com/kailas-cloud/resumerank/internal/db"
	dbValkey "github.com/kailas-cloud/resumerank/internal/db/valkey"
	"github.com/kailas-cloud/resumerank/internal/domain"
	logpkg "github.com/kailas-cloud/resumerank/internal/logger"
	"github.com/kailas-cloud/resumerank/internal/metrics"
	candidaterepo "github.com/kailas-cloud/resumerank/internal/repository/candidate"
	"github.com/kailas-cloud/resumerank/internal/repository/embcache"
	statsrepo "github.com/kailas-cloud/resumerank/internal/repository/stats"
	anthropicLM "github.com/kailas-cloud/resumerank/internal/transport/anthropic"
	chiTransport "github.com/kailas-cloud/resumerank/internal/transport/chi"
	geminiLM "github.com/kailas-cloud/resumerank/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/resumerank/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/resumerank/internal/usecase/embedding"
	expansionuc "github.com/kailas-cloud/resumerank/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/resumerank/internal/usecase/health"
	ingestionuc "github.com/kailas-cloud/resumerank/internal/usecase/ingestion"
	retrievaluc "github.com/kailas-cloud/resumerank/internal/usecase/retrieval"
	screeninguc "github.com/kailas-cloud/resumerank/internal/usecase/screening"
	statsuc "github.com/kailas-cloud/resumerank/internal/usecase/stats"
	"github.com/kailas-cloud/resumerank/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, env, logger); err != nil {
		logger.Fatal("resumerank stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting resumerank API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	// Valkey-search and Redis 8 share the FT.* subset used here, so both
	// drivers go through the same rueidis store.
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterRetrievalMetrics()
	recorder := metrics.RetrievalRecorder{}

	docEmbedder := buildEmbedder(&cfg, cfg.Embedding.DocumentInstruction, embeddinguc.RoleDocument, store, logger)
	queryEmbedder := buildEmbedder(&cfg, cfg.Embedding.QueryInstruction, embeddinguc.RoleQuery, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	completer, err := buildCompleter(ctx, &cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("create language model client: %w", err)
	}

	repo := candidaterepo.New(store, candidaterepo.Config{
		KeyPrefix:  cfg.Storage.KeyPrefix,
		Dimensions: cfg.Embedding.Dimensions,
		HNSW: db.HNSWParams{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
			EFRuntime:   cfg.Index.HNSWEFRuntime,
		},
	})
	if err := repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure candidate index: %w", err)
	}

	statsSvc := statsuc.New(
		statsrepo.New(store, time.Duration(cfg.Storage.StatsDailyTTLHours)*time.Hour),
		cfg.Storage.KeyPrefix,
		logger,
	)

	expander := expansionuc.New(completer, expansionuc.Config{
		MaxQueries:      cfg.Retrieval.MaxQueries,
		MaxOutputTokens: cfg.Retrieval.ExpansionMaxTokens,
		Timeout:         time.Duration(cfg.Retrieval.ExpansionTimeoutSec) * time.Second,
		IncludeOriginal: cfg.Retrieval.IncludeOriginal,
	}, logger)

	retrievalSvc := retrievaluc.New(
		expander,
		retrievaluc.NewSearcher(queryEmbedder, repo),
		repo,
		retrievaluc.Config{
			RRFConstant:         cfg.Retrieval.RRFConstant,
			TopKPerQuery:        cfg.Retrieval.TopKPerQuery,
			TopKFinal:           cfg.Retrieval.TopKFinal,
			OriginalQueryWeight: cfg.Retrieval.OriginalQueryWeight,
		},
		recorder,
		statsSvc,
		logger,
	)

	ingestionSvc := ingestionuc.New(repo, docEmbedder, ingestionuc.Config{
		BatchSize: cfg.Index.BatchSize,
		Workers:   cfg.Index.IngestWorkers,
	}, recorder, logger)

	screeningSvc := screeninguc.New(retrievalSvc, completer, screeninguc.Config{
		MaxContextChars: cfg.Screening.MaxContextChars,
		MaxOutputTokens: cfg.Screening.MaxOutputTokens,
	}, logger)

	healthSvc := healthuc.New(store, healthuc.CheckerOf(docEmbedder), healthuc.CheckerOf(completer), logger)

	server := chiTransport.NewServer(retrievalSvc, screeningSvc, ingestionSvc, repo, statsSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The instruction is outermost so the cache key includes it.
func buildEmbedder(
	cfg *config.Config,
	instruction string,
	role embeddinguc.Role,
	store db.KVStore,
	logger *zap.Logger,
) domain.Embedder {
	ec := cfg.Embedding
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			KeyPrefix: cfg.Storage.KeyPrefix,
			Model:     ec.Model,
			TTL:       time.Duration(ec.CacheTTLHours) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, role, ec.MaxBatch, logger)

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// buildCompleter picks the language-model client for llm.provider.
func buildCompleter(ctx context.Context, lc *config.LLMConfig, logger *zap.Logger) (domain.Completer, error) {
	switch lc.Provider {
	case config.ProviderGemini:
		c, err := geminiLM.NewCompleter(ctx, geminiLM.Config{
			APIKey:      lc.APIKey,
			BaseURL:     lc.BaseURL,
			Model:       lc.Model,
			Temperature: lc.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return c, nil
	case config.ProviderAnthropic:
		return anthropicLM.NewCompleter(anthropicLM.Config{
			APIKey:      lc.APIKey,
			BaseURL:     lc.BaseURL,
			Model:       lc.Model,
			Temperature: lc.Temperature,
			Logger:      logger,
		}), nil
	default:
		return openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:   lc.APIKey,
			BaseURL:  lc.BaseURL,
			Model:    lc.Model,
			Provider: lc.Provider,
			Logger:   logger,
		}, lc.Temperature), nil
	}
}
