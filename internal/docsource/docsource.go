// Package docsource enumerates the files of an indexed directory and
// extracts their text content. PDF files route through a PDFExtractor
// collaborator; every other file is read as UTF-8 text.
package docsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-directory state subdirectory. It holds the
// manifest and the vector database and is never listed as a document.
const StateDirName = ".vs"

var (
	// ErrExtractionFailed is returned when PDF text extraction fails
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Source lists documents in a directory and extracts their text
type Source struct {
	pdf PDFExtractor
}

// New creates a Source. A nil extractor selects the built-in PDF extractor.
func New(pdf PDFExtractor) *Source {
	if pdf == nil {
		pdf = DefaultPDFExtractor()
	}
	return &Source{pdf: pdf}
}

// List returns the regular files directly under dir, in lexical order.
// Listing is intentionally sorted rather than relying on filesystem
// enumeration order, which is not stable across platforms.
func (s *Source) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// os.ReadDir sorts entries by name
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

// ExtractText returns the text content of a document. Files with a .pdf
// extension go through the PDF extractor; everything else is read as UTF-8.
func (s *Source) ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read pdf %s: %w", path, err)
		}
		text, err := s.pdf.ExtractText(data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailed, path, err)
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
