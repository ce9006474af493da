package embedding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/hyperjump/villagerag/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. Each word is hashed into
// one dimension (feature hashing), so texts sharing words score higher than unrelated ones.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length bag-of-words vector for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, w := range SplitWords(text) {
		h := HashString(w)
		emb[h%e.dimensions] += 1
		// A second, sign-varying bucket keeps collisions from dominating small dimensions.
		emb[(h/7)%e.dimensions] += float32(math.Sin(float64(h))) * 0.5
	}
	// Small bias so blank text still has a direction.
	for i := range emb {
		emb[i] += 0.01
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// SplitWords lowercases text and splits it on anything that is not a letter or digit.
func SplitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// HashString returns a non-negative hash of s.
func HashString(s string) int {
	var h uint32
	for _, c := range s {
		h = 31*h + uint32(c)
	}
	return int(h & 0x7fffffff)
}
