package expansion

import (
	"fmt"
	"strings"
)

const promptTemplate = `You help recruiters search a database of candidate resumes.
Rewrite the job description below into %d distinct search queries. Each query should target a
different facet of the role, for example: required technical skills, experience level and
seniority, industry or domain knowledge, and soft skills or working style.

Write each query as a short natural-language description of the ideal candidate's resume.
Output exactly one query per line, with no numbering, headings or explanations.

Job description:
%s`

func buildPrompt(jobDescription string, k int) string {
	return fmt.Sprintf(promptTemplate, k, strings.TrimSpace(jobDescription))
}
