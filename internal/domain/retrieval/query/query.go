package query

// Query is one retrieval query derived from a job description.
// Position is its 1-based order among the expanded queries and breaks fusion ties.
type Query struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// FromTexts numbers texts 1..n in order.
func FromTexts(texts []string) []Query {
	out := make([]Query, len(texts))
	for i, t := range texts {
		out[i] = Query{Text: t, Position: i + 1}
	}
	return out
}

// Texts returns the query strings in order.
func Texts(qs []Query) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text
	}
	return out
}
