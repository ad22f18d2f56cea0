package rag

import (
	"math"
	"sort"
)

// Candidate is one stored chunk considered for retrieval.
type Candidate struct {
	ChunkID    uint
	DocumentID uint
	Content    string
	ChunkIndex int
	Filename   string
	Embedding  []float32
}

// Result is one retrieved chunk ordered by relevance. Score is 1 minus
// the L2 distance to the query vector: a monotonically decreasing
// transform of distance, not a bounded probability.
type Result struct {
	Content    string  `json:"content"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// FallbackScore marks results produced without real similarity scoring.
const FallbackScore = 0.5

// Rank orders candidates by ascending L2 distance to the query vector and
// returns at most topK results, nearest first. Ties keep insertion order.
func Rank(query []float32, candidates []Candidate, topK int) []Result {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}
	type scored struct {
		cand     Candidate
		distance float64
	}
	all := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		all = append(all, scored{cand: cand, distance: l2Distance(query, cand.Embedding)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].distance < all[j].distance
	})
	if topK > len(all) {
		topK = len(all)
	}
	results := make([]Result, 0, topK)
	for _, s := range all[:topK] {
		results = append(results, Result{
			Content:    s.cand.Content,
			Filename:   s.cand.Filename,
			ChunkIndex: s.cand.ChunkIndex,
			Score:      1 - s.distance,
		})
	}
	return results
}

// FallbackResults wraps candidates retrieved without similarity scoring.
// Order is whatever the store returned; the sentinel score marks the
// results as best-effort.
func FallbackResults(candidates []Candidate, topK int) []Result {
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		filename := cand.Filename
		if filename == "" {
			filename = "unknown"
		}
		results = append(results, Result{
			Content:    cand.Content,
			Filename:   filename,
			ChunkIndex: cand.ChunkIndex,
			Score:      FallbackScore,
		})
	}
	return results
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	// Mismatched tails count in full so truncated vectors rank last.
	for i := n; i < len(a); i++ {
		sum += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		sum += float64(b[i]) * float64(b[i])
	}
	return math.Sqrt(sum)
}
