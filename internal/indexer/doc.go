// Package indexer implements incremental directory indexing.
//
// A run loads the manifest, diffs it against the directory listing, and
// processes only files not yet recorded. Each new file is chunked,
// embedded in a single ordered batch, appended to the vector index, and
// then recorded in the manifest, so the manifest's positional ordering
// always matches vector insertion order. Runs are serialized per
// directory with a non-blocking lock.
package indexer
