package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Chunker.ChunkSizeChars)
	assert.Equal(t, 200, cfg.Chunker.OverlapChars)
	assert.Equal(t, 10, cfg.Retrieval.DefaultLimit)
	assert.InDelta(t, 0.7, cfg.Retrieval.DefaultScoreThreshold, 1e-6)
	assert.Equal(t, 1000, cfg.Catalog.ScanLimit)
	assert.False(t, cfg.Catalog.Paginate)
	assert.Equal(t, "documents", cfg.Qdrant.Collection)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
}

func TestLoad_YamlThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
chunker:
  chunk_size_chars: 500
  overlap_chars: 50
qdrant:
  host: qdrant.internal
  collection: team_docs
worker:
  idle_timeout: 30s
catalog:
  paginate: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	t.Setenv("DOCVEC_QDRANT_HOST", "qdrant.override")
	t.Setenv("DOCVEC_RETRIEVAL_DEFAULT_LIMIT", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunker.ChunkSizeChars)
	assert.Equal(t, 50, cfg.Chunker.OverlapChars)
	assert.Equal(t, "qdrant.override", cfg.Qdrant.Host)
	assert.Equal(t, "team_docs", cfg.Qdrant.Collection)
	assert.Equal(t, 30*time.Second, cfg.Worker.IdleTimeout)
	assert.True(t, cfg.Catalog.Paginate)
	assert.Equal(t, 25, cfg.Retrieval.DefaultLimit)
	// untouched keys keep their defaults
	assert.Equal(t, QdrantGrpcPort, cfg.Qdrant.Port)
}

func TestLoad_LegacyQdrantEnv(t *testing.T) {
	t.Setenv("QDRANT_HOST", "legacy-host")
	t.Setenv("QDRANT_PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-host", cfg.Qdrant.Host)
	assert.Equal(t, 7000, cfg.Qdrant.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunker.ChunkSizeChars = 0 }},
		{"negative overlap", func(c *Config) { c.Chunker.OverlapChars = -1 }},
		{"overlap fills a chunk", func(c *Config) { c.Chunker.OverlapChars = c.Chunker.ChunkSizeChars }},
		{"limit too high", func(c *Config) { c.Retrieval.DefaultLimit = 101 }},
		{"threshold above one", func(c *Config) { c.Retrieval.DefaultScoreThreshold = 1.5 }},
		{"zero scan limit", func(c *Config) { c.Catalog.ScanLimit = 0 }},
		{"unknown provider", func(c *Config) { c.Embedder.Provider = "bert" }},
		{"unknown backend", func(c *Config) { c.Index.Backend = "faiss" }},
		{"worker max below min", func(c *Config) { c.Worker.Min = 4; c.Worker.Max = 2 }},
		{"empty collection", func(c *Config) { c.Qdrant.Collection = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "qdrant.host", envKey("DOCVEC_QDRANT_HOST"))
	assert.Equal(t, "chunker.chunk_size_chars", envKey("DOCVEC_CHUNKER_CHUNK_SIZE_CHARS"))
	assert.Equal(t, "mcp", envKey("DOCVEC_MCP"))
}
