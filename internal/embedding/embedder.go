// Package embedding provides text embedding via an OpenAI-compatible API, with caching
// and a deterministic offline embedder.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// probeText is embedded once at startup to check the provider is reachable.
const probeText = "Texto de prueba"

// Probe embeds a sample sentence and checks the vector has the expected dimension.
func Probe(ctx context.Context, e Embedder, logger *zap.Logger) error {
	v, err := e.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("embedding probe: %w", err)
	}
	if len(v) != e.Dimensions() {
		return fmt.Errorf("embedding probe: got %d dimensions, expected %d", len(v), e.Dimensions())
	}
	if logger != nil {
		logger.Info("embedding provider ready", zap.Int("dimensions", len(v)))
	}
	return nil
}
