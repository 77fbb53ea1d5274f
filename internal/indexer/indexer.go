package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/docdex/docdex-mcp/internal/chunker"
	"github.com/docdex/docdex-mcp/internal/docsource"
	"github.com/docdex/docdex-mcp/internal/embedder"
	"github.com/docdex/docdex-mcp/internal/manifest"
	"github.com/docdex/docdex-mcp/internal/vectorindex"
)

// Common errors
var (
	ErrIndexingInProgress = errors.New("indexing already in progress for this directory")
	ErrIndexInconsistent  = errors.New("manifest and vector index are out of sync")
)

// Statistics tracks indexing progress and results
type Statistics struct {
	FilesIndexed   int           `json:"files_indexed"`
	FilesSkipped   int           `json:"files_skipped"`
	FilesFailed    int           `json:"files_failed"`
	ChunksEmbedded int           `json:"chunks_embedded"`
	Duration       time.Duration `json:"duration"`
	ErrorMessages  []string      `json:"error_messages,omitempty"`
}

// Indexer coordinates document discovery, chunking, embedding, and
// persistence for a directory. Each run embeds only files absent from
// the manifest; previously indexed files are never revisited.
type Indexer struct {
	source  *docsource.Source
	chunker *chunker.Chunker
	embed   embedder.Embedder
	locks   *dirLocks
}

// New creates an Indexer with the given document source, chunker, and embedder.
func New(source *docsource.Source, ch *chunker.Chunker, embed embedder.Embedder) *Indexer {
	return &Indexer{
		source:  source,
		chunker: ch,
		embed:   embed,
		locks:   newDirLocks(),
	}
}

// IndexDirectory indexes all new files in dir, appending their chunk
// vectors to the vector index and recording them in the manifest.
// Files already present in the manifest are skipped. Extraction failures
// are logged and counted but do not abort the run; an embedding failure
// does, since continuing would leave later files permanently unindexed
// in a run that reports success.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (*Statistics, error) {
	lock := ix.locks.get(dir)
	if !lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer lock.Release()

	start := time.Now()
	stats := &Statistics{}

	entries, err := manifest.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	index, err := vectorindex.Open(ctx, dir, ix.embed.Dimension())
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}
	defer index.Close()

	size, err := index.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector index size: %w", err)
	}
	if size != manifest.TotalChunks(entries) {
		return nil, fmt.Errorf("%w: manifest has %d chunks, index has %d vectors",
			ErrIndexInconsistent, manifest.TotalChunks(entries), size)
	}

	files, err := ix.source.List(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if manifest.IsIndexed(entries, file) {
			stats.FilesSkipped++
			continue
		}

		text, err := ix.source.ExtractText(file)
		if err != nil {
			log.Printf("Failed to extract %s: %v", file, err)
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		chunks := ix.chunker.Chunk(text)
		if len(chunks) == 0 {
			// No manifest entry is written, so the file is picked up
			// again on the next run if it gains content.
			stats.FilesSkipped++
			continue
		}

		vectors, err := ix.embed.EmbedDocuments(ctx, chunks)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("failed to embed %s: %w", file, err)
		}

		if err := index.Add(ctx, vectors); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("failed to store vectors for %s: %w", file, err)
		}
		if err := manifest.Append(dir, manifest.Entry{Path: file, ChunkCount: len(chunks)}); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("failed to record %s in manifest: %w", file, err)
		}

		stats.FilesIndexed++
		stats.ChunksEmbedded += len(chunks)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
