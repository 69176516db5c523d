package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

// NoMatchAnswer is returned without a model call when retrieval finds nobody.
const NoMatchAnswer = "No matching candidates were found for this job description."

// Config controls answer generation.
type Config struct {
	MaxContextChars int // resume text budget in the prompt (default 12000)
	MaxOutputTokens int // default 1024
}

// Answer is a recommendation together with the retrieval it is based on.
type Answer struct {
	Text             string
	Retrieval        result.Result
	PromptTokens     int
	CompletionTokens int
}

// Service produces a screening recommendation for a job description.
type Service struct {
	retriever Retriever
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates a screening service.
func New(retriever Retriever, completer Completer, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 12000
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{retriever: retriever, completer: completer, cfg: cfg, logger: logger}
}

// Screen retrieves candidates and asks the model for a recommendation.
// Model failures are returned; they do not fall back like query expansion does.
func (s *Service) Screen(ctx context.Context, req request.Request) (Answer, error) {
	res, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if res.IsEmpty() {
		return Answer{Text: NoMatchAnswer, Retrieval: res}, nil
	}
	if s.completer == nil {
		return Answer{}, fmt.Errorf("no language model configured: %w", domain.ErrProviderError)
	}

	start := time.Now()
	prompt := buildAnswerPrompt(req.JobDescription(), res.Candidates, s.cfg.MaxContextChars)
	completion, err := s.completer.Complete(ctx, prompt, s.cfg.MaxOutputTokens)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Info("Screening answer generated",
		zap.String("request_id", res.Metadata.RequestID),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("prompt_tokens", completion.PromptTokens),
		zap.Int("completion_tokens", completion.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return Answer{
		Text:             completion.Text,
		Retrieval:        res,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
	}, nil
}
