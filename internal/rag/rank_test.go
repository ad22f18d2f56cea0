package rag

import (
	"math"
	"testing"
)

func TestRankOrdersByAscendingDistance(t *testing.T) {
	query := []float32{0, 0}
	candidates := []Candidate{
		{ChunkID: 1, Content: "far", Filename: "a.txt", Embedding: []float32{3, 4}},   // distance 5
		{ChunkID: 2, Content: "near", Filename: "a.txt", Embedding: []float32{0, 1}},  // distance 1
		{ChunkID: 3, Content: "mid", Filename: "b.txt", Embedding: []float32{0, 2}},   // distance 2
	}

	results := Rank(query, candidates, 5)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Content != "near" || results[1].Content != "mid" || results[2].Content != "far" {
		t.Fatalf("wrong order: %q, %q, %q", results[0].Content, results[1].Content, results[2].Content)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("scores not non-increasing at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestRankScoreIsOneMinusDistance(t *testing.T) {
	query := []float32{0, 0}
	results := Rank(query, []Candidate{
		{Content: "exact", Embedding: []float32{0, 0}},
		{Content: "unit", Embedding: []float32{1, 0}},
	}, 2)

	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Fatalf("identical vector should score 1, got %f", results[0].Score)
	}
	if math.Abs(results[1].Score-0.0) > 1e-9 {
		t.Fatalf("unit distance should score 0, got %f", results[1].Score)
	}
}

func TestRankTopKBound(t *testing.T) {
	query := []float32{0}
	var candidates []Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, Candidate{ChunkID: uint(i + 1), Embedding: []float32{float32(i)}})
	}
	if got := len(Rank(query, candidates, 3)); got != 3 {
		t.Fatalf("expected 3 results, got %d", got)
	}
	if got := len(Rank(query, candidates, 50)); got != 10 {
		t.Fatalf("expected all 10 results, got %d", got)
	}
	if got := Rank(query, candidates, 0); got != nil {
		t.Fatalf("expected no results for topK=0, got %d", len(got))
	}
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	query := []float32{0, 0}
	results := Rank(query, []Candidate{
		{Content: "first", Embedding: []float32{1, 0}},
		{Content: "second", Embedding: []float32{0, 1}},
		{Content: "third", Embedding: []float32{-1, 0}},
	}, 3)

	if results[0].Content != "first" || results[1].Content != "second" || results[2].Content != "third" {
		t.Fatalf("tied candidates reordered: %q, %q, %q", results[0].Content, results[1].Content, results[2].Content)
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank([]float32{1}, nil, 5); got != nil {
		t.Fatalf("expected nil for no candidates, got %v", got)
	}
}

func TestFallbackResultsSentinel(t *testing.T) {
	candidates := []Candidate{
		{Content: "a", ChunkIndex: 0},
		{Content: "b", ChunkIndex: 1, Filename: "known.txt"},
		{Content: "c", ChunkIndex: 2},
	}
	results := FallbackResults(candidates, 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score != FallbackScore || results[1].Score != FallbackScore {
		t.Fatalf("expected sentinel score %f, got %f and %f", FallbackScore, results[0].Score, results[1].Score)
	}
	if results[0].Filename != "unknown" {
		t.Fatalf("missing filename should report unknown, got %q", results[0].Filename)
	}
	if results[1].Filename != "known.txt" {
		t.Fatalf("known filename should survive, got %q", results[1].Filename)
	}
}
