// Package types provides shared type definitions for the Docdex MCP server.
//
// This package defines the domain types passed between the retrieval
// components: resolved chunks and ranked query results.
//
// # Core Types
//
// ResolvedChunk identifies a piece of document text by its owning file and
// position within that file:
//
//	chunk := types.ResolvedChunk{
//	    FilePath:   "/docs/design.txt",
//	    ChunkIndex: 2,
//	    Text:       chunkText,
//	}
//
// QueryResult pairs a resolved chunk with its vector-index identity and
// squared L2 distance from the query embedding:
//
//	result := types.QueryResult{
//	    VectorID: 17,
//	    Rank:     1,
//	    Distance: 0.42,
//	    Chunk:    chunk,
//	}
//
// # Validation
//
// QueryResult implements a validation method to ensure data integrity:
//
//	if err := result.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Distances are squared Euclidean (L2) distances in embedding space; lower
// values indicate better matches. Results are ordered by ascending distance.
package types
