package expansion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/query"
)

// Config controls fusion expansion.
type Config struct {
	MaxQueries      int           // K, upper bound on sub-queries (default 4)
	MaxOutputTokens int           // completion budget (default 512)
	Timeout         time.Duration // bounded wait for the model (default 8s)
	IncludeOriginal bool          // put the verbatim description first; counts toward K
}

// Service turns a job description into retrieval queries.
type Service struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates an expander. completer may be nil when only GENERIC is served;
// FUSION then fails with domain.ErrExpansion.
func New(completer Completer, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = 4
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, cfg: cfg, logger: logger}
}

// IncludesOriginal reports whether fusion output starts with the verbatim description.
func (s *Service) IncludesOriginal() bool { return s.cfg.IncludeOriginal }

// Expand returns the queries for m. GENERIC yields the verbatim description and never
// calls the model. FUSION yields 1..K distinct queries or an error; model errors keep
// their provider kind and empty output wraps domain.ErrExpansion.
func (s *Service) Expand(ctx context.Context, jobDescription string, m mode.Mode) ([]query.Query, error) {
	switch m {
	case mode.Generic:
		return []query.Query{{Text: jobDescription, Position: 1}}, nil
	case mode.Fusion:
		return s.fusion(ctx, jobDescription)
	default:
		return nil, fmt.Errorf("expand: unknown mode %q: %w", m, domain.ErrMalformedInput)
	}
}

func (s *Service) fusion(ctx context.Context, jobDescription string) ([]query.Query, error) {
	if s.completer == nil {
		return nil, fmt.Errorf("no language model configured: %w", domain.ErrExpansion)
	}

	k := s.cfg.MaxQueries
	wanted := k
	if s.cfg.IncludeOriginal {
		wanted = max(k-1, 1)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	completion, err := s.completer.Complete(callCtx, buildPrompt(jobDescription, wanted), s.cfg.MaxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("expand job description: %w", err)
	}

	generated := parseQueries(completion.Text, k)
	if len(generated) == 0 {
		return nil, fmt.Errorf("model returned no usable queries: %w", domain.ErrExpansion)
	}

	texts := generated
	if s.cfg.IncludeOriginal {
		texts = withOriginal(jobDescription, generated, k)
	}

	s.logger.Debug("Job description expanded",
		zap.Int("queries", len(texts)),
		zap.Int("prompt_tokens", completion.PromptTokens),
		zap.Int("completion_tokens", completion.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return query.FromTexts(texts), nil
}

// withOriginal puts the verbatim description first, drops generated duplicates of it
// and caps the total at k.
func withOriginal(original string, generated []string, k int) []string {
	out := make([]string, 0, k)
	out = append(out, original)
	norm := strings.ToLower(strings.Join(strings.Fields(original), " "))
	for _, g := range generated {
		if len(out) == k {
			break
		}
		if strings.ToLower(g) == norm {
			continue
		}
		out = append(out, g)
	}
	return out
}
