// Package vectorindex wraps an exact nearest-neighbor engine persisted in
// SQLite.
//
// The index is append-only: vectors are stored in insertion order and a
// vector's 0-based position is its only identity. Search is brute-force
// squared Euclidean (L2) distance over all stored vectors, which is exact
// and entirely adequate at directory scale.
//
// # Usage
//
//	ix, err := vectorindex.Open(ctx, dir, embedder.Dimension())
//	if err != nil {
//	    return err
//	}
//	defer ix.Close()
//
//	if err := ix.Add(ctx, vectors); err != nil { // appended in call order
//	    return err
//	}
//
//	distances, ids, err := ix.Search(ctx, queryVector, 5)
//
// Distances come back ascending; ids are insertion positions that the
// resolver maps back to chunk text through the manifest.
//
// # Persistence
//
// The engine owns <directory>/.vs/vectors.db. Opening is cheap and must
// happen before every query so a fresh process sees the previously indexed
// vectors. The configured dimensionality is pinned in the database on first
// open; reopening with a different dimensionality fails with
// ErrDimensionMismatch rather than silently mixing vector spaces.
//
// # Build modes
//
// Two SQLite drivers are supported behind build tags: modernc.org/sqlite
// (pure Go, default) and mattn/go-sqlite3 (cgo, tag cgo_sqlite).
package vectorindex
