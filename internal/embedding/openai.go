package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hyperjump/villagerag/internal/provider"
)

const defaultBatchSize = 64

// OpenAIConfig configures OpenAIEmbedder.
type OpenAIConfig struct {
	Model      string
	Dimensions int
	BatchSize  int
}

// OpenAIEmbedder calls the /embeddings endpoint of an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client     *provider.Client
	model      string
	dimensions int
	batchSize  int
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAIEmbedder creates an embedder that sends requests through client.
func NewOpenAIEmbedder(client *provider.Client, cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &OpenAIEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}, nil
}

// Embed returns the embedding for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in requests of at most BatchSize inputs, preserving order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embeddingsResponse
	if err := e.client.DoJSON(ctx, http.MethodPost, "/embeddings", embeddingsRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, e.malformed(fmt.Sprintf("got %d embeddings for %d inputs", len(resp.Data), len(texts)))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || out[d.Index] != nil {
			return nil, e.malformed(fmt.Sprintf("unexpected embedding index %d", d.Index))
		}
		if len(d.Embedding) != e.dimensions {
			return nil, e.malformed(fmt.Sprintf("got %d dimensions, expected %d", len(d.Embedding), e.dimensions))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *OpenAIEmbedder) malformed(msg string) error {
	return &provider.Error{Provider: e.client.Name(), Op: "POST /embeddings", Message: msg}
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client is shared.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
