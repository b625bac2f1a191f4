package search

import "sort"

// Reciprocal rank fusion constants.  rrfK dampens the influence of early
// ranks; the weights split relevance mass between the two retrieval legs.
const (
	rrfK                  = 60
	defaultSemanticWeight = 0.6
)

// fusedHit is a patent number with its accumulated fusion score.
type fusedHit struct {
	PatentNumber string
	Score        float64
	Semantic     bool
	Fulltext     bool
}

// fuseRRF merges two ranked lists of patent numbers with weighted reciprocal
// rank fusion.  Each list contributes weight/(k+rank+1) per entry, with rank
// counted from zero; a number present in both lists sums both contributions.
// The result is ordered by score descending, ties broken by patent number so
// output is deterministic.
func fuseRRF(semantic, fulltext []string, semanticWeight float64) []fusedHit {
	fulltextWeight := 1.0 - semanticWeight

	scores := make(map[string]*fusedHit, len(semantic)+len(fulltext))
	add := func(numbers []string, weight float64, markSemantic bool) {
		for rank, number := range numbers {
			h, ok := scores[number]
			if !ok {
				h = &fusedHit{PatentNumber: number}
				scores[number] = h
			}
			h.Score += weight / float64(rrfK+rank+1)
			if markSemantic {
				h.Semantic = true
			} else {
				h.Fulltext = true
			}
		}
	}
	add(semantic, semanticWeight, true)
	add(fulltext, fulltextWeight, false)

	out := make([]fusedHit, 0, len(scores))
	for _, h := range scores {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PatentNumber < out[j].PatentNumber
	})
	return out
}

// normalizeScores rescales fusion scores into [0, 1] by dividing by the
// maximum.  A nil or all-zero input is returned unchanged.
func normalizeScores(hits []fusedHit) []fusedHit {
	if len(hits) == 0 {
		return hits
	}
	max := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > max {
			max = h.Score
		}
	}
	if max <= 0 {
		return hits
	}
	for i := range hits {
		hits[i].Score /= max
	}
	return hits
}

// pageSlice applies post-fusion pagination.  Offsets past the end yield an
// empty slice.
func pageSlice(hits []fusedHit, offset, limit int) []fusedHit {
	if offset >= len(hits) {
		return nil
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}

// isZeroVector reports whether the embedding carries no signal.
func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
