package resumerank

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retrievals *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	ingested   *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resumerank",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resumerank",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resumerank",
			Subsystem: "sdk",
			Name:      "retrievals_total",
			Help:      "Retrievals by requested mode, executed mode and status.",
		}, []string{"requested_mode", "query_type", "status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resumerank",
			Subsystem: "sdk",
			Name:      "retrieval_fallbacks_total",
			Help:      "Fusion requests served in generic mode, by reason.",
		}, []string{"reason"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resumerank",
			Subsystem: "sdk",
			Name:      "ingested_items_total",
			Help:      "Ingested candidates by outcome.",
		}, []string{"status"}),
	}
	for _, c := range []**prometheus.CounterVec{&m.operations, &m.retrievals, &m.fallbacks, &m.ingested} {
		if err := registerOrReuse(reg, c); err != nil {
			return nil, err
		}
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("resumerank: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("resumerank: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations. It also serves
// as the retrieval and ingestion recorder of the wired services.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
		} else {
			o.logger.Debug("operation completed", "op", op, "duration", dur)
		}
	}
}

// ObserveRetrieval records one finished retrieval.
func (o *observer) ObserveRetrieval(requestedMode, queryType, status string, queries int, d time.Duration) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.retrievals.WithLabelValues(requestedMode, queryType, status).Inc()
	}
	if o.logger != nil {
		o.logger.Debug("retrieval",
			"requested_mode", requestedMode,
			"query_type", queryType,
			"status", status,
			"queries", queries,
			"duration", d,
		)
	}
}

// ObserveFallback records a fusion request served in generic mode.
func (o *observer) ObserveFallback(reason string) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.fallbacks.WithLabelValues(reason).Inc()
	}
	if o.logger != nil {
		o.logger.Warn("query expansion fell back to generic", "reason", reason)
	}
}

// ObserveIngested records ingestion outcomes.
func (o *observer) ObserveIngested(ok, failed int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.ingested.WithLabelValues("ok").Add(float64(ok))
	o.metrics.ingested.WithLabelValues("error").Add(float64(failed))
}
