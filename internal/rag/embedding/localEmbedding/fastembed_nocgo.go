//go:build !cgo

package localEmbedding

import (
	"context"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
)

// Client is a placeholder for binaries built without cgo; the ONNX runtime is unavailable.
type Client struct{}

func New(_ config.EmbedderConfig) (*Client, error) {
	return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "local_embedding",
		"binary built without cgo; use the google or openai provider")
}

func (c *Client) Dimension() int    { return 0 }
func (c *Client) ModelName() string { return "" }

func (c *Client) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "local_embedding", "not available without cgo")
}

func (c *Client) Close() error { return nil }
