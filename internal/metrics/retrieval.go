package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

const namespace = "resumerank"

// Retrieval and ingestion metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Retrieval requests by requested mode, executed query type and status",
		},
		[]string{"requested_mode", "query_type", "status"},
	)

	RetrievalFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_fallbacks_total",
			Help:      "Fusion requests served in generic mode, by reason",
		},
		[]string{"reason"},
	)

	RetrievalQueriesPerRequest = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_queries_per_request",
			Help:      "Number of similarity searches fanned out per request",
			Buckets:   []float64{1, 2, 3, 4, 6, 8},
		},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"query_type"},
	)

	IngestionItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_items_total",
			Help:      "Ingested candidates by outcome",
		},
		[]string{"status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval and ingestion metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalFallbacksTotal)
	prometheus.MustRegister(RetrievalQueriesPerRequest)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(IngestionItemsTotal)
	retrievalMetricsRegistered = true
}

// RetrievalRecorder writes retrieval observations to the package metrics.
type RetrievalRecorder struct{}

// ObserveRetrieval records one finished retrieval.
func (RetrievalRecorder) ObserveRetrieval(requestedMode, queryType, status string, queries int, d time.Duration) {
	RetrievalRequestsTotal.WithLabelValues(requestedMode, queryType, status).Inc()
	if status == "success" {
		RetrievalQueriesPerRequest.Observe(float64(queries))
		RetrievalDuration.WithLabelValues(queryType).Observe(d.Seconds())
	}
}

// ObserveFallback records a degraded fusion request.
func (RetrievalRecorder) ObserveFallback(reason string) {
	RetrievalFallbacksTotal.WithLabelValues(reason).Inc()
}

// ObserveIngested records ingestion outcomes.
func (RetrievalRecorder) ObserveIngested(ok, failed int) {
	if ok > 0 {
		IngestionItemsTotal.WithLabelValues("ok").Add(float64(ok))
	}
	if failed > 0 {
		IngestionItemsTotal.WithLabelValues("error").Add(float64(failed))
	}
}

// ErrorType maps a provider failure to a low-cardinality label.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrProviderAuth):
		return "auth"
	case errors.Is(err, domain.ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrProviderTimeout):
		return "timeout"
	default:
		return "api_error"
	}
}
