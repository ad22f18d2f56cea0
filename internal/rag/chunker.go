package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChunkSize and DefaultChunkOverlap are measured in runes.
	DefaultMaxChunkSize = 1000
	DefaultChunkOverlap = 200

	// Chunks whose trimmed length falls below this carry too little
	// signal for retrieval and would pollute the index.
	minChunkRunes = 50
)

// Separator patterns tried coarsest to finest. The empty string means a
// hard cut at the rune boundary.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits raw document text into overlapping segments bounded by
// natural separators. It holds no state; the same input always produces
// the same chunk sequence.
type Chunker struct {
	MaxSize int
	Overlap int
}

// NewChunker returns a chunker with the given limits; non-positive values
// fall back to the defaults.
func NewChunker(maxSize, overlap int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = maxSize / 5
	}
	return &Chunker{MaxSize: maxSize, Overlap: overlap}
}

// Split breaks text into chunks of at most MaxSize runes. Pieces are cut
// on the coarsest separator that keeps them under the limit, then greedily
// reassembled; each chunk after the first starts roughly Overlap runes
// before the end of the previous one, snapped to piece boundaries.
// Chunks shorter than 50 trimmed runes are dropped.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := c.split(text, separators)
	var chunks []string
	for _, merged := range c.merge(pieces) {
		trimmed := strings.TrimSpace(merged)
		if utf8.RuneCountInString(trimmed) < minChunkRunes {
			continue
		}
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// split recursively cuts text on the separator list until every piece
// fits in MaxSize runes. Separators stay attached to the preceding piece
// so reassembly is lossless.
func (c *Chunker) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= c.MaxSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return cutRunes(text, c.MaxSize)
	}
	var out []string
	for _, part := range splitAfter(text, seps[0]) {
		if utf8.RuneCountInString(part) > c.MaxSize {
			out = append(out, c.split(part, seps[1:])...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// merge greedily packs pieces into chunks of at most MaxSize runes,
// carrying a tail of at least Overlap runes into the next chunk.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > c.MaxSize && len(window) > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			// Drop pieces from the front until what remains fits the
			// overlap budget alongside the incoming piece.
			for total > c.Overlap || (total+n > c.MaxSize && total > 0) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += n
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// splitAfter splits on sep keeping the separator at the end of each piece.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cutRunes hard-cuts text into pieces of at most size runes.
func cutRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
