package indexer

import (
	"context"

	"github.com/hyperjump/villagerag/internal/models"
	"go.uber.org/zap"
)

// ChunkSource produces the chunks an index is built from.
type ChunkSource interface {
	Chunks(ctx context.Context) ([]models.Chunk, error)
}

// Pipeline loads documents and chunks them.
type Pipeline struct {
	loader  *Loader
	chunker *Chunker
	logger  *zap.Logger
}

// NewPipeline returns a ChunkSource backed by loader and chunker. logger may be nil.
func NewPipeline(loader *Loader, chunker *Chunker, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{loader: loader, chunker: chunker, logger: logger}
}

// Chunks loads every document and splits it. An empty corpus returns an empty slice.
func (p *Pipeline) Chunks(ctx context.Context) ([]models.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := p.loader.Load()
	if err != nil {
		return nil, err
	}
	chunks, err := p.chunker.ChunkAll(docs)
	if err != nil {
		return nil, err
	}
	limits := p.chunker.Limits()
	fields := append([]zap.Field{
		zap.Int("documents", len(docs)),
		zap.Int("chunk_size", limits.MaxSize),
		zap.Int("chunk_overlap", limits.MaxOverlap),
	}, ComputeStats(chunks).fields()...)
	p.logger.Info("documents split", fields...)
	return chunks, nil
}
