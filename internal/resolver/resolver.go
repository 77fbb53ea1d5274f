// Package resolver maps global vector ids back to document chunks.
//
// The manifest records, in insertion order, how many chunks each file
// contributed. A vector id is resolved by walking that ordering to the
// owning file, re-extracting the file, re-chunking it, and picking the
// local chunk. Chunking is deterministic, so as long as indexed files
// are unmodified the re-derived chunk is the one that was embedded.
package resolver

import (
	"log"

	"github.com/docdex/docdex-mcp/internal/chunker"
	"github.com/docdex/docdex-mcp/internal/docsource"
	"github.com/docdex/docdex-mcp/internal/manifest"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// Resolver resolves global vector ids to chunk text
type Resolver struct {
	source  *docsource.Source
	chunker *chunker.Chunker
}

// New creates a Resolver backed by the given source and chunker.
// The chunker must be configured identically to the one used at
// indexing time or local chunk indices will not line up.
func New(source *docsource.Source, ch *chunker.Chunker) *Resolver {
	return &Resolver{source: source, chunker: ch}
}

// Resolve returns the chunk behind a global vector id, or nil when the
// id cannot be resolved. A nil result with a nil error means the id is
// out of range or the underlying file no longer chunks the same way;
// callers drop such ids rather than failing the whole query.
func (r *Resolver) Resolve(dir string, globalIndex int64) (*types.ResolvedChunk, error) {
	entries, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}

	entry, localIndex, ok := manifest.Locate(entries, globalIndex)
	if !ok {
		return nil, nil
	}

	text, err := r.source.ExtractText(entry.Path)
	if err != nil {
		log.Printf("Failed to re-extract %s while resolving vector %d: %v", entry.Path, globalIndex, err)
		return nil, nil
	}

	chunks := r.chunker.Chunk(text)
	if localIndex >= len(chunks) {
		// The file shrank since indexing. Its vectors are stale.
		return nil, nil
	}

	return &types.ResolvedChunk{
		FilePath:   entry.Path,
		ChunkIndex: localIndex,
		Text:       chunks[localIndex],
	}, nil
}
