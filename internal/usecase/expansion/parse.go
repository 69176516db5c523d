package expansion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// "1.", "2)", "(3)", "4:", "5 -"; a bare leading number ("5 years") is kept.
	numberPrefix = regexp.MustCompile(`^\(?\d{1,2}(?:[\.\):]|\s+-)\)?\s+`)
	bulletPrefix = regexp.MustCompile(`^[\-\*\x{2022}\x{2023}\x{25E6}\x{2043}>]+\s*`)
	// "Query 1:", "Sub-query 2.", "Q3)"
	labelPrefix = regexp.MustCompile(`^(?i)(?:(?:sub-?)?query\s*\d*|q\s*\d+)\s*[:\.\)]\s*`)
	emphasis    = strings.NewReplacer("**", "", "__", "")
)

const quoteChars = "\"'`“”„‘’«»"

// parseQueries extracts at most k distinct queries from a model reply.
// Returns nil when the reply holds nothing usable.
func parseQueries(reply string, k int) []string {
	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")

	seen := make(map[string]bool, k)
	out := make([]string, 0, k)
	for _, line := range lines {
		q := cleanLine(line)
		if q == "" {
			continue
		}
		// "Here are the queries:" or a lone "Queries:" introduces the list.
		if len(out) == 0 && strings.HasSuffix(q, ":") {
			continue
		}
		q = trimQuotes(strings.TrimSpace(strings.TrimSuffix(q, ":")))
		if !hasWord(q) {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
		if len(out) == k {
			break
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanLine(line string) string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "```") || strings.HasPrefix(s, "#") {
		return ""
	}

	s = bulletPrefix.ReplaceAllString(s, "")
	s = numberPrefix.ReplaceAllString(s, "")
	s = emphasis.Replace(s)
	s = labelPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	s = strings.Trim(s, "*_`")
	s = strings.TrimSpace(s)
	s = trimQuotes(s)

	return strings.Join(strings.Fields(s), " ")
}

// trimQuotes strips quote characters from both ends, paired or not.
func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(s, quoteChars))
}

// hasWord reports whether s contains at least one letter or digit.
func hasWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
