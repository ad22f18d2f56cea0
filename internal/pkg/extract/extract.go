// Package extract turns uploaded file bytes into plain text. PDF, DOCX
// and plain-text files are supported; anything else is rejected before
// the bytes are touched.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat means the file extension is not one we extract.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrExtraction means the bytes could not be parsed as the claimed format.
	ErrExtraction = errors.New("text extraction failed")
)

// Text extracts plain text from data, choosing the parser by the
// filename's extension (case-insensitive).
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".txt":
		return txtText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func pdfText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty pdf", ErrExtraction)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func txtText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid utf-8", ErrExtraction)
	}
	return strings.TrimSpace(string(data)), nil
}
