package expansion

import (
	"context"
	"sync"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

type mockCompleter struct {
	mu        sync.Mutex
	text      string
	err       error
	block     bool
	calls     int
	prompt    string
	maxOutput int
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	m.mu.Lock()
	m.calls++
	m.prompt = prompt
	m.maxOutput = maxOutput
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return domain.Completion{}, ctx.Err()
	}
	if m.err != nil {
		return domain.Completion{}, m.err
	}
	return domain.Completion{Text: m.text, PromptTokens: 100, CompletionTokens: 20}, nil
}
