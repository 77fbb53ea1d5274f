package docsource

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor converts raw PDF bytes into plain text
type PDFExtractor interface {
	ExtractText(data []byte) (string, error)
}

// pdfExtractor implements PDFExtractor on github.com/ledongthuc/pdf
type pdfExtractor struct{}

// DefaultPDFExtractor returns the built-in pure-Go PDF extractor
func DefaultPDFExtractor() PDFExtractor {
	return pdfExtractor{}
}

func (pdfExtractor) ExtractText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs; surface those as
	// extraction errors instead of crashing the indexing run.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}

	content, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}

	return string(content), nil
}
