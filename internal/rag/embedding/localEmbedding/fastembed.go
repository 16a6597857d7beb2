//go:build cgo

// Package localEmbedding runs sentence-transformer models in-process through ONNX.
package localEmbedding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/pkg/logger_i"
	fastembed "github.com/anush008/fastembed-go"
)

var modelMapping = map[string]fastembed.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                     fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                 fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                      fastembed.BGEBaseEN,
}

var modelDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.AllMiniLML6V2: 384,
	fastembed.BGESmallENV15: 384,
	fastembed.BGESmallEN:    384,
	fastembed.BGEBaseENV15:  768,
	fastembed.BGEBaseEN:     768,
}

type Client struct {
	// the ONNX session is not safe for concurrent runs
	mu        sync.Mutex
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	batchSize int
	logger    *logger_i.Logger
}

func New(cfg config.EmbedderConfig) (*Client, error) {
	name := cfg.Model
	if name == "" {
		name = config.DefaultLocalEmbeddingModel
	}
	model, ok := modelMapping[name]
	if !ok {
		return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "local_embedding", "unsupported model %q", name)
	}
	dimension := modelDimensions[model]
	if cfg.Dimension != 0 && cfg.Dimension != dimension {
		return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "local_embedding",
			"model %s produces %d dimensions, configured %d", name, dimension, cfg.Dimension)
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "local_embedding", err)
		}
		cacheDir = filepath.Join(home, ".cache", config.ServiceName, "models")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}
	showProgress := false

	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "local_embedding", fmt.Errorf("initializing fastembed: %w", err))
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultEmbeddingBatchSize
	}
	c := &Client{
		model:     flagEmbed,
		modelName: name,
		dimension: dimension,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("local_embedding"),
	}
	c.logger.Info("Local embedding model loaded", "model", name, "dimension", dimension, "cacheDir", cacheDir)
	return c, nil
}

func (c *Client) Dimension() int    { return c.dimension }
func (c *Client) ModelName() string { return c.modelName }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "local_embedding", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "local_embedding", "model is closed")
	}

	vectors, err := c.model.PassageEmbed(texts, c.batchSize)
	if err != nil {
		c.logger.FromContext(ctx).Error("Error running local embedding model", "error", err)
		return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "local_embedding", err)
	}
	return vectors, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return nil
	}
	err := c.model.Destroy()
	c.model = nil
	return err
}
