package resumerank

import "context"

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Optional: if the provided Embedder also implements BatchEmbedder,
// ingestion uses it instead of per-resume calls.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Completer is a language model: one prompt in, one completion out.
// Required for fusion mode and Screen; generic retrieval works without it.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxOutput int) (Completion, error)
}

// Completion is generated text with provider-reported token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
