package domain

import "context"

// Completer is the language-model contract: one prompt in, one text completion out.
// Provider failures must be returned with one of the ErrProvider* kinds.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxOutput int) (Completion, error)
}

// Completion is a generated text with token usage as reported by the provider.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
