package hit

// Hit is one entry of a single query's ranked result list.
type Hit struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"` // 1-based position within the list
}

// Ranked assigns ranks 1..n to ids in the order the index returned them (best match first).
func Ranked(ids []string, scores []float64) []Hit {
	out := make([]Hit, len(ids))
	for i, id := range ids {
		var s float64
		if i < len(scores) {
			s = scores[i]
		}
		out[i] = Hit{CandidateID: id, Score: s, Rank: i + 1}
	}
	return out
}
