package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
)

// Fixed ranking policy.
const (
	VectorWeight  = 0.6
	LexicalWeight = 0.4

	// MissingRank stands in for a lexical hit the store did not rank.
	MissingRank = 1000.0

	DefaultLimit = 20
)

// LexicalScore maps a raw lexical rank (lower is better) into (0,1].
func LexicalScore(hit index.LexicalHit) float64 {
	rank := MissingRank
	if hit.Ranked {
		rank = max(hit.Rank, 0)
	}
	return 1 / (1 + rank)
}

// Fuse merges both branches into one list ordered by combined score.
// Equal scores keep first-insertion order: vector hits first, then
// lexical-only hits.
func Fuse(vectorHits []index.VectorHit, lexicalHits []index.LexicalHit, limit int) []*core.SearchResult {
	results := make([]*core.SearchResult, 0, len(vectorHits)+len(lexicalHits))
	byID := make(map[core.ID]*core.SearchResult, cap(results))

	for _, hit := range vectorHits {
		score := index.ClampScore(hit.Score)
		if existing, ok := byID[hit.ID]; ok {
			existing.VectorScore = score
			existing.CombinedScore = VectorWeight * score
			continue
		}
		r := &core.SearchResult{
			TaskID:        hit.ID,
			VectorScore:   score,
			CombinedScore: VectorWeight * score,
		}
		byID[hit.ID] = r
		results = append(results, r)
	}

	for _, hit := range lexicalHits {
		bm25 := LexicalScore(hit)
		if existing, ok := byID[hit.ID]; ok {
			existing.BM25Score = bm25
			existing.CombinedScore = VectorWeight*existing.VectorScore + LexicalWeight*bm25
			continue
		}
		r := &core.SearchResult{
			TaskID:        hit.ID,
			BM25Score:     bm25,
			CombinedScore: LexicalWeight * bm25,
		}
		byID[hit.ID] = r
		results = append(results, r)
	}

	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		return cmp.Compare(b.CombinedScore, a.CombinedScore)
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
