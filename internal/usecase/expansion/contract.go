package expansion

import (
	"context"

	"github.com/kailas-cloud/resumerank/internal/domain"
)

// Completer is the language-model dependency of the expander.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxOutput int) (domain.Completion, error)
}
