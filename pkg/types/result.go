package types

// ResolvedChunk is a chunk of document text located through the manifest.
// Chunk text is recomputed from the source file at lookup time, so the
// content is only meaningful while the file is unchanged since indexing.
type ResolvedChunk struct {
	FilePath   string // Path recorded in the manifest
	ChunkIndex int    // Position within the owning file (0-based)
	Text       string
}

// QueryResult represents a single retrieval result with its distance
type QueryResult struct {
	// Identification
	VectorID int64 // Global insertion-order position in the vector index
	Rank     int   // Position in result set (1-based)

	// Scoring
	Distance float32 // Squared L2 distance; lower is more similar

	// Content
	Chunk ResolvedChunk
}

// Validate checks if the query result is valid
func (qr *QueryResult) Validate() error {
	if qr.VectorID < 0 {
		return ErrInvalidVectorID
	}

	if qr.Rank < 1 {
		return ErrInvalidRank
	}

	if qr.Distance < 0 {
		return ErrNegativeDistance
	}

	if qr.Chunk.Text == "" {
		return ErrEmptyContent
	}

	return nil
}
