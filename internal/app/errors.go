package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrChatNotFound     = errors.New("chat not found")
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmbedding aborts the current operation: partial embedding
	// coverage of a document is unusable, and a query without a vector
	// cannot be answered.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration is recovered by substituting an apology answer; it
	// never aborts a query on its own.
	ErrGeneration = errors.New("answer generation failed")
)
