package screening

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
)

const answerTemplate = `You are an experienced technical recruiter. Using only the resumes below,
recommend the candidates that best fit the job description. Rank them, cite each candidate by
ID and explain in one or two sentences how their experience matches the role. Point out
important requirements a candidate does not meet. Do not invent facts that are not in a resume.

Job description:
%s

Resumes:
%s`

const truncatedMark = "\n[truncated]"

// buildAnswerPrompt lists candidates in ranked order. Resume text is cut so the
// whole resume section stays within maxContext bytes; candidates that no longer fit are left out.
func buildAnswerPrompt(jobDescription string, candidates []result.Candidate, maxContext int) string {
	var b strings.Builder
	remaining := maxContext

	for i, c := range candidates {
		header := fmt.Sprintf("--- Candidate %d (ID: %s) ---\n", i+1, c.ID)
		if remaining <= len(header) {
			break
		}
		b.WriteString(header)
		remaining -= len(header)

		text := strings.TrimSpace(c.Text)
		if len(text) > remaining {
			text = truncate(text, max(remaining-len(truncatedMark), 0)) + truncatedMark
		}
		b.WriteString(text)
		b.WriteString("\n\n")
		remaining -= len(text) + 2
	}

	return fmt.Sprintf(answerTemplate, strings.TrimSpace(jobDescription), strings.TrimRight(b.String(), "\n"))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
