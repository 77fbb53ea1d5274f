package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdex/docdex-mcp/internal/config"
	"github.com/docdex/docdex-mcp/internal/embedder"
)

func newLocalServer(t *testing.T) *Server {
	t.Helper()
	embed, err := embedder.New(embedder.Config{Provider: embedder.ProviderLocal, CacheSize: 100})
	require.NoError(t, err)

	server, err := NewServer(config.Default(), embed, nil)
	require.NoError(t, err)
	return server
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

// resultJSON decodes the text payload of a tool result.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestServe_ReturnsOnContextCancel(t *testing.T) {
	server := newLocalServer(t)

	// A pipe with no writer keeps the transport blocked on read, the
	// state Serve is in while waiting for the next request.
	pr, pw := io.Pipe()
	defer pw.Close()
	server.in = pr
	server.out = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestNewServer_Components(t *testing.T) {
	server := newLocalServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.indexer)
	assert.NotNil(t, server.pipeline)
	assert.Nil(t, server.chat, "chat client is optional")
}

func TestHandleIndexDirectory_ThenQueryAndStatus(t *testing.T) {
	server := newLocalServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("gophers burrow underground\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "more.txt"), []byte("ships sail the sea\n"), 0644))

	result, err := server.handleIndexDirectory(context.Background(), toolRequest(map[string]interface{}{
		"path": dir,
	}))
	require.NoError(t, err)

	indexed := resultJSON(t, result)
	assert.Equal(t, true, indexed["indexed"])
	assert.Equal(t, float64(2), indexed["files_indexed"])
	assert.Equal(t, float64(2), indexed["chunks_embedded"])

	result, err = server.handleQueryDocuments(context.Background(), toolRequest(map[string]interface{}{
		"path":  dir,
		"query": "where do gophers live?",
		"top_k": float64(2),
	}))
	require.NoError(t, err)

	queried := resultJSON(t, result)
	results, ok := queried["results"].([]interface{})
	require.True(t, ok)
	assert.Len(t, results, 2)
	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), first["rank"])
	assert.NotEmpty(t, first["text"])

	result, err = server.handleGetStatus(context.Background(), toolRequest(map[string]interface{}{
		"path": dir,
	}))
	require.NoError(t, err)

	status := resultJSON(t, result)
	assert.Equal(t, true, status["indexed"])
	stats, ok := status["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), stats["files_count"])
	assert.Equal(t, float64(2), stats["chunks_count"])
	assert.Equal(t, float64(2), stats["vector_count"])
	assert.Equal(t, true, stats["consistent"])
}

func TestHandleGetStatus_NotIndexed(t *testing.T) {
	server := newLocalServer(t)
	dir := t.TempDir()

	result, err := server.handleGetStatus(context.Background(), toolRequest(map[string]interface{}{
		"path": dir,
	}))
	require.NoError(t, err)

	status := resultJSON(t, result)
	assert.Equal(t, false, status["indexed"])
}

func TestHandleIndexDirectory_InvalidPath(t *testing.T) {
	server := newLocalServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"relative path", map[string]interface{}{"path": "relative/dir"}},
		{"nonexistent path", map[string]interface{}{"path": "/does/not/exist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.handleIndexDirectory(context.Background(), toolRequest(tt.args))
			require.Error(t, err)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestHandleQueryDocuments_ParamValidation(t *testing.T) {
	server := newLocalServer(t)
	dir := t.TempDir()

	_, err := server.handleQueryDocuments(context.Background(), toolRequest(map[string]interface{}{
		"path": dir,
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)

	_, err = server.handleQueryDocuments(context.Background(), toolRequest(map[string]interface{}{
		"path":  dir,
		"query": "anything",
		"top_k": float64(500),
	}))
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleAskDocuments_WithoutGenerator(t *testing.T) {
	server := newLocalServer(t)

	_, err := server.handleAskDocuments(context.Background(), toolRequest(map[string]interface{}{
		"path":     t.TempDir(),
		"question": "anything",
	}))
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNoGenerator, mcpErr.Code)
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{
		"from_json": float64(7),
		"native":    3,
	}

	assert.Equal(t, 7, getIntDefault(args, "from_json", 1))
	assert.Equal(t, 3, getIntDefault(args, "native", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))
}
