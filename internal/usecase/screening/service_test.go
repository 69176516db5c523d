package screening

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumerank/internal/domain"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

type mockRetriever struct {
	res result.Result
	err error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ request.Request) (result.Result, error) {
	return m.res, m.err
}

type mockCompleter struct {
	text      string
	err       error
	calls     int
	prompt    string
	maxOutput int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, maxOutput int) (domain.Completion, error) {
	m.calls++
	m.prompt, m.maxOutput = prompt, maxOutput
	if m.err != nil {
		return domain.Completion{}, m.err
	}
	return domain.Completion{Text: m.text, PromptTokens: 900, CompletionTokens: 120}, nil
}

func makeRequest(t *testing.T) request.Request {
	t.Helper()
	req, err := request.New("Staff data engineer, Spark, Airflow", mode.Fusion, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestScreen(t *testing.T) {
	ret := &mockRetriever{res: result.Result{
		Candidates: []result.Candidate{
			{ID: "17", Text: "Spark and Airflow for 6 years"},
			{ID: "4", Text: "Backend Java developer"},
		},
		Metadata: result.Metadata{RequestID: "r1", QueryType: mode.Fusion},
	}}
	comp := &mockCompleter{text: "Candidate 17 is the best fit."}
	svc := New(ret, comp, Config{MaxOutputTokens: 700}, zap.NewNop())

	ans, err := svc.Screen(context.Background(), makeRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != "Candidate 17 is the best fit." || ans.PromptTokens != 900 || ans.CompletionTokens != 120 {
		t.Errorf("answer = %+v", ans)
	}
	if len(ans.Retrieval.Candidates) != 2 || ans.Retrieval.Metadata.RequestID != "r1" {
		t.Errorf("retrieval not passed through: %+v", ans.Retrieval)
	}
	if comp.maxOutput != 700 {
		t.Errorf("maxOutput = %d", comp.maxOutput)
	}
	for _, want := range []string{"Staff data engineer", "(ID: 17)", "(ID: 4)", "Spark and Airflow for 6 years"} {
		if !strings.Contains(comp.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Index(comp.prompt, "(ID: 17)") > strings.Index(comp.prompt, "(ID: 4)") {
		t.Error("candidates must keep ranked order")
	}
}

func TestScreen_NoMatches(t *testing.T) {
	comp := &mockCompleter{}
	svc := New(&mockRetriever{res: result.Result{Candidates: []result.Candidate{}}}, comp, Config{}, nil)

	ans, err := svc.Screen(context.Background(), makeRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != NoMatchAnswer {
		t.Errorf("text = %q", ans.Text)
	}
	if comp.calls != 0 {
		t.Error("model must not be called without candidates")
	}
}

func TestScreen_RetrieveError(t *testing.T) {
	svc := New(&mockRetriever{err: domain.ErrIndexUnavailable}, &mockCompleter{}, Config{}, nil)
	if _, err := svc.Screen(context.Background(), makeRequest(t)); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestScreen_ModelErrorSurfaces(t *testing.T) {
	ret := &mockRetriever{res: result.Result{Candidates: []result.Candidate{{ID: "1", Text: "x"}}}}
	comp := &mockCompleter{err: domain.NewProviderError("anthropic", domain.ErrProviderRateLimited, 429, "")}
	svc := New(ret, comp, Config{}, nil)

	if _, err := svc.Screen(context.Background(), makeRequest(t)); !errors.Is(err, domain.ErrProviderRateLimited) {
		t.Fatalf("expected ErrProviderRateLimited, got %v", err)
	}
}

func TestScreen_NoCompleter(t *testing.T) {
	ret := &mockRetriever{res: result.Result{Candidates: []result.Candidate{{ID: "1", Text: "x"}}}}
	svc := New(ret, nil, Config{}, nil)

	if _, err := svc.Screen(context.Background(), makeRequest(t)); !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestBuildAnswerPrompt_Budget(t *testing.T) {
	cands := []result.Candidate{
		{ID: "a", Text: strings.Repeat("x", 300)},
		{ID: "b", Text: strings.Repeat("y", 300)},
		{ID: "c", Text: strings.Repeat("z", 300)},
	}

	prompt := buildAnswerPrompt("jd", cands, 400)

	if !strings.Contains(prompt, "(ID: a)") || !strings.Contains(prompt, "(ID: b)") {
		t.Error("first candidates should be present")
	}
	if strings.Contains(prompt, "(ID: c)") {
		t.Error("candidate beyond the budget should be dropped")
	}
	if !strings.Contains(prompt, truncatedMark) {
		t.Error("truncated resume should be marked")
	}
	resumes := prompt[strings.Index(prompt, "Resumes:\n")+len("Resumes:\n"):]
	if len(resumes) > 400 {
		t.Errorf("resume section is %d bytes, budget 400", len(resumes))
	}
}

func TestTruncate_KeepsRunes(t *testing.T) {
	s := "Пётр Иванов"
	for n := 0; n <= len(s); n++ {
		if got := truncate(s, n); !utf8.ValidString(got) || len(got) > n {
			t.Errorf("truncate(%d) = %q", n, got)
		}
	}
}
