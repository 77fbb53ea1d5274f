package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/docdex/docdex-mcp/internal/config"
	"github.com/docdex/docdex-mcp/internal/embedder"
	"github.com/docdex/docdex-mcp/internal/generate"
	"github.com/docdex/docdex-mcp/internal/mcp"
	"github.com/docdex/docdex-mcp/internal/vectorindex"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Docdex MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", vectorindex.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", vectorindex.DriverName)
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("Docdex MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", vectorindex.BuildMode, vectorindex.DriverName)

	// Load .env if present; environment variables already set win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, cfgPath, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Using config file %s", cfgPath)
	}

	embed, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	log.Printf("Embedder: provider=%s model=%s dimension=%d",
		embed.Provider(), embed.Model(), embed.Dimension())

	// Answer generation is optional; without an API key the
	// ask_documents tool reports itself unavailable.
	var chat *generate.Client
	if chat, err = generate.NewFromEnv(cfg.Generate.Model); err != nil {
		log.Printf("Answer generation disabled: %v", err)
		chat = nil
	} else {
		log.Printf("Answer generation: model=%s", chat.Model())
	}

	server, err := mcp.NewServer(cfg, embed, chat)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Serve returns once ctx is cancelled, so a signal unblocks Wait.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Println("MCP server ready, listening on stdio...")
		return server.Serve(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if cfg.Embedder.Provider == "" {
		return embedder.NewFromEnv()
	}
	apiKey := ""
	switch cfg.Embedder.Provider {
	case embedder.ProviderGemini:
		apiKey = os.Getenv(embedder.EnvGeminiAPIKey)
	case embedder.ProviderOpenAI:
		apiKey = os.Getenv(embedder.EnvOpenAIAPIKey)
	}
	return embedder.New(embedder.Config{
		Provider:  cfg.Embedder.Provider,
		APIKey:    apiKey,
		CacheSize: cfg.Embedder.CacheSize,
	})
}
