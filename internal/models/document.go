// Package models defines core data structures for documents, chunks, and retrieval results.
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Document is one unit of source text: a whole file, or a single page/sheet/slide of it.
type Document struct {
	SourceID string `json:"source"`
	Content  string `json:"content"`
	// Page is 1-based; 0 means the source has no page structure.
	Page int `json:"page,omitempty"`
}

// PageLabel returns the page number as text, or "N/A" when the document has no pages.
func (d Document) PageLabel() string {
	return PageLabel(d.Page)
}

// PageLabel formats a 1-based page number; 0 yields "N/A".
func PageLabel(page int) string {
	if page <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", page)
}

// Chunk is a bounded text segment derived from a Document. Build chunks with NewChunk.
type Chunk struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	SourceID string `json:"source"`
	Page     int    `json:"page,omitempty"`
	Index    int    `json:"chunk_index"`
	// OverlapPrefix is the leading part of Text shared with the previous chunk of the same document.
	OverlapPrefix string `json:"overlap_prefix,omitempty"`
}

// ChunkLimits bounds chunk and overlap length in characters.
type ChunkLimits struct {
	MaxSize    int
	MaxOverlap int
}

// NewChunk validates the length and overlap invariants and returns the chunk.
// The ID is derived from source, page and index so it is stable across rebuilds.
func NewChunk(text, overlapPrefix, sourceID string, page, index int, limits ChunkLimits) (Chunk, error) {
	if n := utf8.RuneCountInString(text); n > limits.MaxSize {
		return Chunk{}, fmt.Errorf("chunk %d of %s: length %d exceeds max %d", index, sourceID, n, limits.MaxSize)
	}
	if n := utf8.RuneCountInString(overlapPrefix); n > limits.MaxOverlap {
		return Chunk{}, fmt.Errorf("chunk %d of %s: overlap %d exceeds max %d", index, sourceID, n, limits.MaxOverlap)
	}
	if !strings.HasPrefix(text, overlapPrefix) {
		return Chunk{}, fmt.Errorf("chunk %d of %s: overlap is not a prefix of the text", index, sourceID)
	}
	return Chunk{
		ID:            fmt.Sprintf("%s#p%d#c%d", sourceID, page, index),
		Text:          text,
		SourceID:      sourceID,
		Page:          page,
		Index:         index,
		OverlapPrefix: overlapPrefix,
	}, nil
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// IndexEntry is a chunk together with its embedding, as stored in a vector collection.
type IndexEntry struct {
	Chunk  Chunk     `json:"chunk"`
	Vector []float32 `json:"-"`
}
