// Package manifest maintains the append-only file-to-chunk-count record
// that defines the global ordering of vectors in the index.
//
// The manifest lives at <directory>/.vs/faiss_lookup.txt with one
// "<path> <chunk_count>" record per line, in indexing order. Entry i's
// chunks occupy the next chunk_count consecutive vector positions after all
// prior entries', so the manifest and the vector index must only ever be
// appended to together, per file, in order.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// StateDirName is the per-directory state subdirectory
	StateDirName = ".vs"
	// FileName is the manifest file name inside the state directory
	FileName = "faiss_lookup.txt"
)

// Entry records one indexed file and how many chunks it contributed
type Entry struct {
	Path       string
	ChunkCount int
}

// Path returns the manifest file path for a directory
func Path(dir string) string {
	return filepath.Join(dir, StateDirName, FileName)
}

// Load reads all manifest entries for a directory in record order.
// A missing manifest is an empty index, not an error. Malformed lines are
// skipped.
func Load(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if entry, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return entries, nil
}

// Append writes one entry record. This is the only mutation the manifest
// supports; it must happen immediately after the corresponding vectors were
// appended to the index.
func Append(dir string, entry Entry) error {
	if entry.ChunkCount <= 0 {
		return fmt.Errorf("append manifest: chunk count must be positive, got %d", entry.ChunkCount)
	}

	if err := os.MkdirAll(filepath.Join(dir, StateDirName), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	f, err := os.OpenFile(Path(dir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open manifest for append: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "%s %d\n", entry.Path, entry.ChunkCount); err != nil {
		return fmt.Errorf("append manifest: %w", err)
	}

	return nil
}

// IsIndexed reports whether path already has a manifest entry
func IsIndexed(entries []Entry, path string) bool {
	for _, entry := range entries {
		if entry.Path == path {
			return true
		}
	}
	return false
}

// TotalChunks sums the chunk counts across all entries. After a consistent
// indexing run this equals the vector index size.
func TotalChunks(entries []Entry) int64 {
	var total int64
	for _, entry := range entries {
		total += int64(entry.ChunkCount)
	}
	return total
}

// Locate maps a global vector position to its owning entry and the chunk
// offset within that entry's file. ok is false when the position falls past
// the last entry.
func Locate(entries []Entry, globalIndex int64) (entry Entry, localIndex int, ok bool) {
	if globalIndex < 0 {
		return Entry{}, 0, false
	}

	remaining := globalIndex
	for _, e := range entries {
		if remaining < int64(e.ChunkCount) {
			return e, int(remaining), true
		}
		remaining -= int64(e.ChunkCount)
	}

	return Entry{}, 0, false
}

// parseLine parses one "<path> <chunk_count>" record. The count is the
// final whitespace-separated field so paths containing spaces round-trip.
func parseLine(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Entry{}, false
	}

	cut := strings.LastIndexByte(line, ' ')
	if cut <= 0 {
		return Entry{}, false
	}

	count, err := strconv.Atoi(line[cut+1:])
	if err != nil || count <= 0 {
		return Entry{}, false
	}

	return Entry{Path: line[:cut], ChunkCount: count}, true
}
