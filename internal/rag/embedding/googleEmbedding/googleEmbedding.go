package googleEmbedding

import (
	"context"
	"errors"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/customHttpClient"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/pkg/logger_i"
	"google.golang.org/genai"
)

const taskTypeRetrievalDocument = "RETRIEVAL_DOCUMENT"

// contentEmbedder is the slice of genai.Models used here.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Client struct {
	models    contentEmbedder
	model     string
	dimension int32
	batchSize int
	logger    *logger_i.Logger
}

func New(ctx context.Context, cfg config.EmbedderConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ragErrors.New(ragErrors.KindEmbedderUnavailable, "google_embedding", "no API key configured")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.NewPooledClient(cfg.Timeout),
	})
	if err != nil {
		return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "google_embedding", err)
	}
	model := cfg.Model
	if model == "" || model == config.DefaultLocalEmbeddingModel {
		model = config.GoogleEmbeddingModel
	}
	client := newWithModels(c.Models, model, cfg.Dimension, cfg.BatchSize)
	client.logger.Info("Google Embedding client created", "model", model, "dimension", cfg.Dimension)
	return client, nil
}

func newWithModels(models contentEmbedder, model string, dimension, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = config.DefaultEmbeddingBatchSize
	}
	return &Client{
		models:    models,
		model:     model,
		dimension: int32(dimension),
		batchSize: batchSize,
		logger:    logger_i.NewLogger("google_embedding"),
	}
}

func (c *Client) Dimension() int    { return int(c.dimension) }
func (c *Client) ModelName() string { return c.model }

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.FromContext(ctx)
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		log.Debug("Embedding batch", "from", start, "to", end)

		res, err := c.models.EmbedContent(ctx, c.model, getContent(texts[start:end]), &genai.EmbedContentConfig{
			OutputDimensionality: &c.dimension,
			TaskType:             taskTypeRetrievalDocument,
		})
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "google_embedding", err)
		}
		if res == nil {
			return nil, ragErrors.Wrap(ragErrors.KindEmbedderUnavailable, "google_embedding", errors.New("empty response"))
		}
		for _, e := range res.Embeddings {
			if e == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
