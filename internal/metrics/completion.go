package metrics

import "github.com/prometheus/client_golang/prometheus"

// Language-model completion metrics, shared by every LM transport.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Total number of language-model completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider", "model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	CompletionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_errors_total",
			Help:      "Total completion errors by failure kind",
		},
		[]string{"provider", "model", "error_type"},
	)
)

var completionMetricsRegistered bool

// RegisterCompletionMetrics registers completion metrics. Must be called once from main.
func RegisterCompletionMetrics() {
	if completionMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(CompletionErrorsTotal)
	completionMetricsRegistered = true
}

// ObserveCompletion records one finished completion call.
// errorType is empty on success.
func ObserveCompletion(provider, model string, seconds float64, promptTokens, completionTokens int, errorType string) {
	if errorType != "" {
		CompletionRequestsTotal.WithLabelValues(provider, model, "error").Inc()
		CompletionErrorsTotal.WithLabelValues(provider, model, errorType).Inc()
		return
	}
	CompletionRequestsTotal.WithLabelValues(provider, model, "success").Inc()
	CompletionRequestDuration.WithLabelValues(provider, model).Observe(seconds)
	if promptTokens > 0 {
		CompletionTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		CompletionTokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}
