package vector

import (
	"sort"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/pkg/utils"
)

// topK scores every entry against query by cosine similarity and returns the best k.
// Ties keep insertion order.
func topK(query []float32, entries []models.IndexEntry, k int) []Hit {
	if k <= 0 || len(entries) == 0 {
		return nil
	}
	hits := make([]Hit, len(entries))
	for i, e := range entries {
		hits[i] = Hit{Chunk: e.Chunk, Score: utils.Cosine(query, e.Vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}
