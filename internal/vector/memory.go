package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/villagerag/internal/models"
)

// MemoryStore keeps collections in process memory with brute-force cosine search.
// Contents are lost when the process exits.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dimensions int
	entries    []models.IndexEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// CollectionInfo reports the exact point count.
func (m *MemoryStore) CollectionInfo(ctx context.Context, name string) (CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return CollectionInfo{}, nil
	}
	return CollectionInfo{Exists: true, PointCount: len(c.entries), CountKnown: true}, nil
}

// Search returns the top-k entries by cosine similarity.
func (m *MemoryStore) Search(ctx context.Context, name string, query []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("search %s: %w", name, ErrCollectionNotFound)
	}
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), c.dimensions)
	}
	return topK(query, c.entries, k), nil
}

// CreateFromEntries replaces the collection. Vectors are copied.
func (m *MemoryStore) CreateFromEntries(ctx context.Context, name string, dimensions int, entries []models.IndexEntry) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	c := &memoryCollection{dimensions: dimensions, entries: make([]models.IndexEntry, len(entries))}
	for i, e := range entries {
		if len(e.Vector) != dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), dimensions)
		}
		vec := make([]float32, dimensions)
		copy(vec, e.Vector)
		c.entries[i] = models.IndexEntry{Chunk: e.Chunk, Vector: vec}
	}
	m.mu.Lock()
	m.collections[name] = c
	m.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
