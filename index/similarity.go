package index

import (
	"cmp"
	"math"
	"slices"
)

// Cosine returns the cosine similarity of two equal-length vectors, or 0
// when either has zero magnitude.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range min(len(a), len(b)) {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ClampScore limits a similarity to [0,1].
func ClampScore(s float64) float64 {
	return min(max(s, 0), 1)
}

// TopVectorHits sorts scored hits by raw similarity (descending, ties by
// ascending ID), truncates to limit and clamps the reported scores.
func TopVectorHits(hits []VectorHit, limit int) []VectorHit {
	slices.SortStableFunc(hits, func(a, b VectorHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		hits[i].Score = ClampScore(hits[i].Score)
	}
	return hits
}
