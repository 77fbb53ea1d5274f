package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/docdex/docdex-mcp/internal/chunker"
	"github.com/docdex/docdex-mcp/internal/config"
	"github.com/docdex/docdex-mcp/internal/docsource"
	"github.com/docdex/docdex-mcp/internal/embedder"
	"github.com/docdex/docdex-mcp/internal/generate"
	"github.com/docdex/docdex-mcp/internal/indexer"
	"github.com/docdex/docdex-mcp/internal/query"
	"github.com/docdex/docdex-mcp/internal/resolver"
)

const (
	// ServerName is the MCP server name
	ServerName = "docdex-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	embed    embedder.Embedder
	indexer  *indexer.Indexer
	pipeline *query.Pipeline
	chat     *generate.Client
	topK     int

	// Transport endpoints, os.Stdin/os.Stdout outside of tests
	in  io.Reader
	out io.Writer
}

// NewServer creates a new MCP server instance. The chat client is
// optional; without it the ask_documents tool reports that answer
// generation is unavailable.
func NewServer(cfg *config.Config, embed embedder.Embedder, chat *generate.Client) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if embed == nil {
		var err error
		embed, err = embedder.NewFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	}

	source := docsource.New(nil)
	ch := chunker.NewWithMaxChars(cfg.Chunker.MaxChars)
	res := resolver.New(source, ch)

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		embed:    embed,
		indexer:  indexer.New(source, ch, embed),
		pipeline: query.New(embed, res),
		chat:     chat,
		topK:     cfg.Query.TopK,
		in:       os.Stdin,
		out:      os.Stdout,
	}

	s.registerTools()
	return s, nil
}

// Serve runs the MCP server on stdio. It blocks until ctx is cancelled
// or the input stream closes, so signal-driven shutdown works: callers
// cancel ctx and Serve returns ctx's error.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.embed.Close() }()
	return server.NewStdioServer(s.mcp).Listen(ctx, s.in, s.out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexDirectoryTool(), s.handleIndexDirectory)
	s.mcp.AddTool(queryDocumentsTool(), s.handleQueryDocuments)
	s.mcp.AddTool(askDocumentsTool(), s.handleAskDocuments)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
