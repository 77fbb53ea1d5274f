// Package mcp implements the Model Context Protocol (MCP) server for Docdex.
//
// The MCP server exposes four tools to AI assistants:
//   - index_directory: Index the documents in a directory
//   - query_documents: Retrieve the chunks most similar to a query
//   - ask_documents: Answer a question grounded in retrieved chunks
//   - get_status: Check indexing status and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server listens on stdin for protocol messages and writes responses
// to stdout, so all diagnostic logging goes to stderr.
//
// # Tool: index_directory
//
// Index a directory of documents:
//
//	Request:
//	{
//	  "name": "index_directory",
//	  "arguments": {
//	    "path": "/path/to/documents"
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_indexed": 12,
//	  "files_skipped": 3,
//	  "chunks_embedded": 145,
//	  "duration_ms": 8210
//	}
//
// Indexing is incremental: files already recorded in the directory's
// manifest are skipped, so repeated calls only embed new files.
//
// # Tool: query_documents
//
// Retrieve the chunks nearest to a natural language query:
//
//	Request:
//	{
//	  "name": "query_documents",
//	  "arguments": {
//	    "path": "/path/to/documents",
//	    "query": "how do I configure retries?",
//	    "top_k": 5
//	  }
//	}
//
// Results are ordered by ascending distance. Chunks whose files changed
// since indexing may be dropped, so fewer than top_k results can come back.
//
// # Tool: ask_documents
//
// Retrieve chunks and generate an answer grounded in them. Requires
// GEMINI_API_KEY at server startup.
//
// # Tool: get_status
//
// Report manifest and vector index statistics for a directory, including
// whether the two are consistent.
package mcp
