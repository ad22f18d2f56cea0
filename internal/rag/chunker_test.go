package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func wordText(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "word%04d ", i)
	}
	return sb.String()
}

func TestSplitDeterministic(t *testing.T) {
	c := NewChunker(1000, 200)
	text := wordText(800)

	first := c.Split(text)
	second := c.Split(text)

	if len(first) == 0 {
		t.Fatalf("expected chunks, got none")
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	c := NewChunker(1000, 200)
	for i, chunk := range c.Split(wordText(1200)) {
		if n := utf8.RuneCountInString(chunk); n > 1000 {
			t.Fatalf("chunk %d has %d runes, max is 1000", i, n)
		}
	}
}

func TestSplitDropsShortChunks(t *testing.T) {
	c := NewChunker(1000, 200)
	chunks := c.Split(wordText(1200))
	if len(chunks) == 0 {
		t.Fatalf("expected chunks, got none")
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(strings.TrimSpace(chunk)); n < 50 {
			t.Fatalf("chunk %d has %d trimmed runes, floor is 50", i, n)
		}
	}
}

func TestSplitShortInput(t *testing.T) {
	c := NewChunker(1000, 200)
	if got := c.Split("too short to index"); got != nil {
		t.Fatalf("expected no chunks for short input, got %d", len(got))
	}
	if got := c.Split("   \n\n  "); got != nil {
		t.Fatalf("expected no chunks for blank input, got %d", len(got))
	}
}

func TestSplitChunkCountApproximation(t *testing.T) {
	// For plain running text the chunk count tracks
	// ceil((L-overlap)/(maxSize-overlap)) up to separator snapping.
	c := NewChunker(1000, 200)
	text := strings.TrimSpace(wordText(556)) // ~5000 runes
	l := utf8.RuneCountInString(text)

	expected := (l - 200 + 799) / 800
	chunks := c.Split(text)
	if len(chunks) < expected-1 || len(chunks) > expected+2 {
		t.Fatalf("got %d chunks for %d runes, expected about %d", len(chunks), l, expected)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.TrimSpace(wordText(70)) // ~630 runes each
	para2 := strings.Repeat("second paragraph sentence here. ", 20)
	para2 = strings.TrimSpace(para2)
	text := para1 + "\n\n" + para2

	c := NewChunker(1000, 200)
	chunks := c.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != para1 {
		t.Fatalf("first chunk is not the first paragraph:\n%q", chunks[0])
	}
	if chunks[1] != para2 {
		t.Fatalf("second chunk is not the second paragraph:\n%q", chunks[1])
	}
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	c := NewChunker(200, 60)
	chunks := c.Split(wordText(120))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		head := string([]rune(chunks[i])[:10])
		if !strings.Contains(chunks[i-1], head) {
			t.Fatalf("chunk %d does not begin inside chunk %d: head %q", i, i-1, head)
		}
	}
}

func TestSplitHardCutLongToken(t *testing.T) {
	// A single token longer than the chunk size forces the character
	// boundary fallback.
	c := NewChunker(100, 20)
	token := strings.Repeat("x", 350)
	chunks := c.Split(token)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks for long token")
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 100 {
			t.Fatalf("chunk %d has %d runes, max is 100", i, n)
		}
	}
}
