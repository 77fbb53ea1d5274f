// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/docdex/docdex-mcp/internal/chunker"
	"github.com/docdex/docdex-mcp/internal/query"
)

// EmbedderConfig selects and configures the embedding provider.
// An empty Provider means autodetect from the environment.
type EmbedderConfig struct {
	Provider  string `yaml:"provider"`
	CacheSize int    `yaml:"cache_size"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// QueryConfig configures retrieval.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// GenerateConfig configures answer generation.
type GenerateConfig struct {
	Model string `yaml:"model"`
}

// Config is the root application configuration structure.
type Config struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Query    QueryConfig    `yaml:"query"`
	Generate GenerateConfig `yaml:"generate"`
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./docdex.yaml first, then ~/.config/docdex/config.yaml.
// If neither exists it returns defaults.
func LoadDefault() (*Config, string, error) {
	cwdPath := "docdex.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), "", nil
	}
	userPath := filepath.Join(home, ".config", "docdex", "config.yaml")
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	return Default(), "", nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Chunker.MaxChars <= 0 {
		cfg.Chunker.MaxChars = chunker.DefaultMaxChars
	}
	if cfg.Query.TopK <= 0 {
		cfg.Query.TopK = query.DefaultTopK
	}
	if cfg.Embedder.CacheSize <= 0 {
		cfg.Embedder.CacheSize = 1000
	}
}
