package retrieval

import (
	"math"
	"sort"

	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/hit"
)

// DefaultRRFConstant is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const DefaultRRFConstant = 60

// Contributions are summed in list order, so equal totals built from the same
// terms in a different order can differ in the last bits.
const scoreEpsilon = 1e-12

type fused struct {
	id       string
	score    float64
	bestRank int
	order    int // first-encountered position across lists, in query order
}

// fuseRRF merges ranked lists via Reciprocal Rank Fusion.
// score(c) = sum of weights[i] / (k + rank_i(c)) over every list where c appears;
// rank_i is the 1-based position of c's first occurrence in list i.
// Ties are broken by best rank across lists, then by first-encountered order.
// limit <= 0 keeps every candidate.
func fuseRRF(lists [][]hit.Hit, weights []float64, k, limit int) []fused {
	if len(lists) == 1 {
		return passThrough(lists[0], weightAt(weights, 0), k, limit)
	}

	merged := make(map[string]*fused)
	var order []*fused

	for li, list := range lists {
		w := weightAt(weights, li)
		seen := make(map[string]bool, len(list))
		for pos, h := range list {
			if seen[h.CandidateID] {
				continue
			}
			seen[h.CandidateID] = true

			rank := pos + 1
			s := w / float64(k+rank)
			if f, ok := merged[h.CandidateID]; ok {
				f.score += s
				f.bestRank = min(f.bestRank, rank)
				continue
			}
			f := &fused{id: h.CandidateID, score: s, bestRank: rank, order: len(order)}
			merged[h.CandidateID] = f
			order = append(order, f)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if math.Abs(a.score-b.score) > scoreEpsilon {
			return a.score > b.score
		}
		if a.bestRank != b.bestRank {
			return a.bestRank < b.bestRank
		}
		return a.order < b.order
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	out := make([]fused, len(order))
	for i, f := range order {
		out[i] = *f
	}
	return out
}

// passThrough is the single-list case: fused order equals list order.
func passThrough(list []hit.Hit, w float64, k, limit int) []fused {
	out := make([]fused, 0, len(list))
	seen := make(map[string]bool, len(list))
	for pos, h := range list {
		if seen[h.CandidateID] {
			continue
		}
		seen[h.CandidateID] = true
		rank := pos + 1
		out = append(out, fused{id: h.CandidateID, score: w / float64(k+rank), bestRank: rank, order: len(out)})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func weightAt(weights []float64, i int) float64 {
	if i < len(weights) {
		return weights[i]
	}
	return 1
}
