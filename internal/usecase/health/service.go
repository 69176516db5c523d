package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a provider is failing; retrieval may still work in GENERIC mode.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used in Report.Checks.
const (
	ComponentStore     = "vector_store"
	ComponentEmbedding = "embedding"
	ComponentLLM       = "llm"
)

const defaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     Pinger
	embedding ProviderChecker
	llm       ProviderChecker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Service. embedding and llm can be nil.
func New(store Pinger, embedding, llm ProviderChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedding: embedding, llm: llm, timeout: defaultCheckTimeout, logger: logger}
}

// Check runs all component checks concurrently, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]func(context.Context) error{ComponentStore: s.store.Ping}
	if s.embedding != nil {
		checks[ComponentEmbedding] = s.embedding.HealthCheck
	}
	if s.llm != nil {
		checks[ComponentLLM] = s.llm.HealthCheck
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := check(cctx); err != nil {
				res = CheckError
				s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := Healthy
	for name, v := range results {
		if v != CheckError {
			continue
		}
		if name == ComponentStore {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: results}
}
