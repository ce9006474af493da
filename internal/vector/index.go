// Package vector provides the vector stores that hold embedded chunks: Qdrant over REST,
// a SQLite file, and an in-memory store.
package vector

import (
	"context"
	"errors"

	"github.com/hyperjump/villagerag/internal/models"
)

// ErrCollectionNotFound is returned when searching a collection that does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// Store holds named collections of embedded chunks.
// A collection is only ever created whole; there is no partial update or delete.
type Store interface {
	// CollectionInfo reports whether a collection exists and, when the store can tell, how many points it holds.
	CollectionInfo(ctx context.Context, name string) (CollectionInfo, error)
	// Search returns up to k hits ordered by descending similarity.
	Search(ctx context.Context, name string, query []float32, k int) ([]Hit, error)
	// CreateFromEntries replaces the collection with one holding exactly entries.
	CreateFromEntries(ctx context.Context, name string, dimensions int, entries []models.IndexEntry) error
	Close() error
}

// CollectionInfo describes a collection. PointCount is meaningful only when CountKnown is true.
type CollectionInfo struct {
	Exists     bool
	PointCount int
	CountKnown bool
}

// Hit is a single similarity search result.
type Hit struct {
	Chunk models.Chunk
	Score float64 // cosine similarity, higher is closer
}
