// Package query implements the retrieval pipeline: embed the query
// text, search the vector index, and resolve the nearest vectors back
// to document chunks.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/docdex/docdex-mcp/internal/embedder"
	"github.com/docdex/docdex-mcp/internal/manifest"
	"github.com/docdex/docdex-mcp/internal/resolver"
	"github.com/docdex/docdex-mcp/internal/vectorindex"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// DefaultTopK is the number of results returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// Common errors
var (
	ErrEmptyQuery        = errors.New("query text is empty")
	ErrIndexInconsistent = errors.New("manifest and vector index are out of sync")
)

// Pipeline runs semantic queries against an indexed directory
type Pipeline struct {
	embed    embedder.Embedder
	resolver *resolver.Resolver
}

// New creates a query Pipeline.
func New(embed embedder.Embedder, res *resolver.Resolver) *Pipeline {
	return &Pipeline{embed: embed, resolver: res}
}

// Query embeds text, searches dir's vector index, and returns up to k
// resolved chunks in ascending distance order. k <= 0 selects
// DefaultTopK. Vector ids that no longer resolve to a chunk are
// dropped, so fewer than k results may come back even when the index
// holds k or more vectors.
func (p *Pipeline) Query(ctx context.Context, dir, text string, k int) ([]types.QueryResult, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultTopK
	}

	entries, err := manifest.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	index, err := vectorindex.Open(ctx, dir, p.embed.Dimension())
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

	queryVec, err := p.embed.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	distances, ids, err := index.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]types.QueryResult, 0, len(ids))
	for i, id := range ids {
		chunk, err := p.resolver.Resolve(dir, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve vector %d: %w", id, err)
		}
		if chunk == nil {
			continue
		}
		results = append(results, types.QueryResult{
			VectorID: id,
			Rank:     len(results) + 1,
			Distance: distances[i],
			Chunk:    *chunk,
		})
	}

	return results, nil
}
