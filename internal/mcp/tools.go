package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docdex/docdex-mcp/internal/indexer"
	"github.com/docdex/docdex-mcp/internal/manifest"
	"github.com/docdex/docdex-mcp/internal/vectorindex"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32001 // Another indexing run is already active
	ErrorCodeEmptyQuery         = -32002 // Query parameter is empty
	ErrorCodeNoGenerator        = -32003 // Answer generation not configured
)

// handleIndexDirectory handles the index_directory tool invocation
func (s *Server) handleIndexDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requirePath(request)
	if err != nil {
		return nil, err
	}

	stats, err := s.indexer.IndexDirectory(ctx, path)
	if errors.Is(err, indexer.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":         true,
		"files_indexed":   stats.FilesIndexed,
		"files_skipped":   stats.FilesSkipped,
		"files_failed":    stats.FilesFailed,
		"chunks_embedded": stats.ChunksEmbedded,
		"duration_ms":     stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleQueryDocuments handles the query_documents tool invocation
func (s *Server) handleQueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, text, k, err := s.retrievalParams(request, "query")
	if err != nil {
		return nil, err
	}

	results, err := s.pipeline.Query(ctx, path, text, k)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":   text,
		"results": formatResults(results),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAskDocuments handles the ask_documents tool invocation
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return nil, newMCPError(ErrorCodeNoGenerator, "answer generation not configured", map[string]interface{}{
			"reason": "GEMINI_API_KEY not set",
		})
	}

	path, question, k, err := s.retrievalParams(request, "question")
	if err != nil {
		return nil, err
	}

	results, err := s.pipeline.Query(ctx, path, question, k)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	contexts := make([]string, len(results))
	for i, result := range results {
		contexts[i] = result.Chunk.Text
	}

	answer, err := s.chat.Answer(ctx, question, contexts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "answer generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"question": question,
		"answer":   answer,
		"sources":  formatResults(results),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requirePath(request)
	if err != nil {
		return nil, err
	}

	entries, err := manifest.Load(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read manifest", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(entries) == 0 {
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Directory not indexed. Use index_directory to index it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	index, err := vectorindex.Open(ctx, path, s.embed.Dimension())
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to open vector index", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer index.Close()

	size, err := index.Size(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read vector index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"path":    path,
		"statistics": map[string]interface{}{
			"files_count":  len(entries),
			"chunks_count": manifest.TotalChunks(entries),
			"vector_count": size,
			"consistent":   size == manifest.TotalChunks(entries),
		},
		"embedder": map[string]interface{}{
			"provider":  s.embed.Provider(),
			"model":     s.embed.Model(),
			"dimension": s.embed.Dimension(),
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// requirePath extracts and validates the path argument
func requirePath(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return path, nil
}

// retrievalParams extracts the shared arguments of the retrieval tools
func (s *Server) retrievalParams(request mcp.CallToolRequest, textParam string) (path, text string, k int, err error) {
	path, err = requirePath(request)
	if err != nil {
		return "", "", 0, err
	}

	args, _ := request.Params.Arguments.(map[string]interface{})
	text, ok := args[textParam].(string)
	if !ok || text == "" {
		return "", "", 0, newMCPError(ErrorCodeEmptyQuery, textParam+" parameter is required and cannot be empty", map[string]interface{}{
			"param":  textParam,
			"reason": "missing or empty",
		})
	}

	k = getIntDefault(args, "top_k", s.topK)
	if k < 1 || k > 100 {
		return "", "", 0, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 100", map[string]interface{}{
			"param": "top_k",
			"value": k,
		})
	}
	return path, text, k, nil
}

func formatResults(results []types.QueryResult) []map[string]interface{} {
	formatted := make([]map[string]interface{}, len(results))
	for i, result := range results {
		formatted[i] = map[string]interface{}{
			"rank":        result.Rank,
			"distance":    result.Distance,
			"file_path":   result.Chunk.FilePath,
			"chunk_index": result.Chunk.ChunkIndex,
			"text":        result.Chunk.Text,
		}
	}
	return formatted
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path is an absolute, readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
