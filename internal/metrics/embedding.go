package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding metrics, written by the embedding transports and the vector cache.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Embedding API calls by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Latency of successful embedding API calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_batch_size",
			Help:      "Texts sent per embedding API call",
			Buckets:   []float64{1, 4, 16, 64, 128, 256},
		},
		[]string{"provider"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_tokens_total",
			Help:      "Embedding tokens billed by the provider",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "total"
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_errors_total",
			Help:      "Embedding failures by kind",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Vector cache lookups for resumes and job descriptions",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers embedding metrics. Must be called once from main.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingBatchSize,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingCacheTotal,
	)
	embMetricsRegistered = true
}

// EmbeddingCall describes one finished embedding API call.
type EmbeddingCall struct {
	Provider     string
	Model        string
	Texts        int
	Seconds      float64
	PromptTokens int
	TotalTokens  int
	// ErrorType is empty on success.
	ErrorType string
}

// ObserveEmbedding records one finished embedding API call.
func ObserveEmbedding(c EmbeddingCall) {
	EmbeddingBatchSize.WithLabelValues(c.Provider).Observe(float64(c.Texts))
	if c.ErrorType != "" {
		EmbeddingRequestsTotal.WithLabelValues(c.Provider, c.Model, "error").Inc()
		EmbeddingErrorsTotal.WithLabelValues(c.Provider, c.Model, c.ErrorType).Inc()
		return
	}
	EmbeddingRequestsTotal.WithLabelValues(c.Provider, c.Model, "success").Inc()
	EmbeddingRequestDuration.WithLabelValues(c.Provider, c.Model).Observe(c.Seconds)
	if c.TotalTokens > 0 {
		EmbeddingTokensTotal.WithLabelValues(c.Provider, c.Model, "prompt").Add(float64(c.PromptTokens))
		EmbeddingTokensTotal.WithLabelValues(c.Provider, c.Model, "total").Add(float64(c.TotalTokens))
	}
}
