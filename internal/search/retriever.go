// Package search retrieves ranked passages for a query from the vector index.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/vector"
)

// Searcher runs a similarity search; *indexer.Index implements it.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]vector.Hit, error)
}

// Retrieve returns up to k passages ranked 1..n by descending similarity.
func Retrieve(ctx context.Context, s Searcher, query string, k int) ([]models.RetrievedPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	hits, err := s.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	passages := make([]models.RetrievedPassage, len(hits))
	for i, h := range hits {
		passages[i] = models.RetrievedPassage{Chunk: h.Chunk, Rank: i + 1, Score: h.Score}
	}
	return passages, nil
}
