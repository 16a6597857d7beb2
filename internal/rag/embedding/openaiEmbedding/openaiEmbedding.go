// Package openaiEmbedding talks to the OpenAI embeddings endpoint or any server
// exposing the same API (Ollama, vLLM, text-embeddings-inference).
package openaiEmbedding

import (
	"context"
	"strings"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/customHttpClient"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	api       openai.Client
	model     string
	dimension int
	batchSize int
	logger    *logger_i.Logger
}

func New(cfg config.EmbedderConfig) (*Client, error) {
	opts := []option.RequestOption{
		option.WithHTTPClient(customHttpClient.NewPooledClient(cfg.Timeout)),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "openai_embedding", "neither API key nor base URL configured")
	}

	model := cfg.Model
	if model == "" || model == config.DefaultLocalEmbeddingModel {
		model = config.OpenAIEmbeddingModel
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultEmbeddingBatchSize
	}

	c := &Client{
		api:       openai.NewClient(opts...),
		model:     model,
		dimension: cfg.Dimension,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
	c.logger.Info("OpenAI embedding client created", "model", model, "baseURL", cfg.BaseURL)
	return c, nil
}

func (c *Client) Dimension() int    { return c.dimension }
func (c *Client) ModelName() string { return c.model }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.FromContext(ctx)
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batch := texts[start:end]

		params := openai.EmbeddingNewParams{
			Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model:          openai.EmbeddingModel(c.model),
			EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
		}
		// only the v3 models accept a requested output size
		if strings.HasPrefix(c.model, "text-embedding-3") && c.dimension > 0 {
			params.Dimensions = openai.Int(int64(c.dimension))
		}

		res, err := c.api.Embeddings.New(ctx, params)
		if err != nil {
			log.Error("Error getting embeddings", "error", err)
			return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "openai_embedding", err)
		}

		ordered := make([][]float32, len(batch))
		for _, d := range res.Data {
			if d.Index < 0 || int(d.Index) >= len(batch) {
				return nil, ragErrors.New(ragErrors.KindEmbedderContractViolation, "openai_embedding",
					"response index %d outside batch of %d", d.Index, len(batch))
			}
			ordered[d.Index] = toFloat32(d.Embedding)
		}
		if len(res.Data) != len(batch) {
			return nil, ragErrors.New(ragErrors.KindEmbedderContractViolation, "openai_embedding",
				"expected %d embeddings, got %d", len(batch), len(res.Data))
		}
		out = append(out, ordered...)
	}
	return out, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
