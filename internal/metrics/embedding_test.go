package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEmbedding(t *testing.T) {
	ObserveEmbedding(EmbeddingCall{
		Provider: "voyage", Model: "v3", Texts: 64, Seconds: 0.3, PromptTokens: 900, TotalTokens: 900,
	})
	ObserveEmbedding(EmbeddingCall{Provider: "voyage", Model: "v3", Texts: 1, ErrorType: "auth"})

	if got := testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("voyage", "v3", "success")); got != 1 {
		t.Errorf("success = %v", got)
	}
	if got := testutil.ToFloat64(EmbeddingErrorsTotal.WithLabelValues("voyage", "v3", "auth")); got != 1 {
		t.Errorf("auth errors = %v", got)
	}
	if got := testutil.ToFloat64(EmbeddingTokensTotal.WithLabelValues("voyage", "v3", "total")); got != 900 {
		t.Errorf("tokens = %v", got)
	}
	if n := testutil.CollectAndCount(EmbeddingBatchSize); n != 1 {
		t.Errorf("batch size series = %d, want 1", n)
	}
}
