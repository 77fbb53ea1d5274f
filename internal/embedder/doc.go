// Package embedder generates vector embeddings for document chunks and
// queries using various providers.
//
// The embedder supports Gemini, OpenAI, and a local offline provider, with
// batching, caching, and bounded retry for production use.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	// One batch call per file during indexing
//	vectors, err := emb.EmbedDocuments(ctx, chunks)
//
//	// Single call per query
//	qv, err := emb.EmbedQuery(ctx, "how is the manifest ordered?")
//
// EmbedDocuments returns one vector per input, in input order. The
// incremental indexer relies on that ordering to keep the vector index
// aligned with the manifest.
//
// # Provider Selection
//
// The embedder selects a provider based on environment variables:
//
//  1. If DOCDEX_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if GEMINI_API_KEY is set → use Gemini
//  3. Else if OPENAI_API_KEY is set → use OpenAI
//  4. Else → fallback to local provider (offline mode)
//
// Gemini uses gemini-embedding-001 (dimension 3072) with the
// RETRIEVAL_DOCUMENT / RETRIEVAL_QUERY task types. OpenAI uses
// text-embedding-3-small (dimension 1536). The local provider produces
// deterministic hash-derived vectors (dimension 384) with no semantic
// meaning; it exists for offline runs and tests.
//
// # Error Handling
//
// Non-success API responses surface as *RequestError carrying the HTTP
// status and response body. Transient failures are retried with bounded
// exponential backoff around the HTTP call only:
//
//	vectors, err := emb.EmbedDocuments(ctx, texts)
//	var reqErr *embedder.RequestError
//	if errors.As(err, &reqErr) {
//	    log.Printf("embedding API returned %d: %s", reqErr.Status, reqErr.Body)
//	}
//
// # Caching
//
// An in-memory LRU cache keyed by content hash avoids re-embedding repeated
// queries:
//
//	cache := embedder.NewCache(10000) // cache 10k embeddings
package embedder
