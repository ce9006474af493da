// Package indexer loads source documents, splits them into chunks and manages the vector index built from them.
package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/villagerag/internal/models"
)

// defaultSeparators are tried in order: paragraph, line, sentence, word, character.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits documents on the largest natural boundary that keeps every chunk within
// the size limit, carrying up to the overlap limit of trailing text into the next chunk.
// Sizes are counted in characters.
type Chunker struct {
	limits     models.ChunkLimits
	separators []string
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		limits:     models.ChunkLimits{MaxSize: chunkSize, MaxOverlap: chunkOverlap},
		separators: defaultSeparators,
	}
}

// Limits returns the size and overlap bounds.
func (c *Chunker) Limits() models.ChunkLimits {
	return c.limits
}

// piece is a chunk candidate and the text it shares with the chunk before it.
type piece struct {
	text    string
	overlap string
}

// Chunk splits one document. Blank documents yield no chunks.
func (c *Chunker) Chunk(doc models.Document) ([]models.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	pieces := c.split(doc.Content, c.separators)
	chunks := make([]models.Chunk, 0, len(pieces))
	for _, p := range pieces {
		ch, err := models.NewChunk(p.text, p.overlap, doc.SourceID, doc.Page, len(chunks), c.limits)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ch)
	}
	return chunks, nil
}

// ChunkAll splits every document, preserving document order.
func (c *Chunker) ChunkAll(docs []models.Document) ([]models.Chunk, error) {
	var all []models.Chunk
	for _, d := range docs {
		chunks, err := c.Chunk(d)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}

func (c *Chunker) split(text string, separators []string) []piece {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var (
		result []piece
		fits   []string
	)
	for _, s := range splitKeep(text, sep) {
		if utf8.RuneCountInString(s) <= c.limits.MaxSize {
			fits = append(fits, s)
			continue
		}
		if len(fits) > 0 {
			result = append(result, c.merge(fits)...)
			fits = nil
		}
		if len(rest) == 0 {
			result = append(result, c.merge(splitKeep(s, ""))...)
			continue
		}
		result = append(result, c.split(s, rest)...)
	}
	if len(fits) > 0 {
		result = append(result, c.merge(fits)...)
	}
	return result
}

// merge greedily packs small splits into chunks. When a chunk is full, splits are dropped
// from its front until at most MaxOverlap characters remain; those become the start of the next chunk.
func (c *Chunker) merge(splits []string) []piece {
	var (
		result  []piece
		current []string
		total   int
		carried string
	)
	emit := func() {
		text := strings.TrimSpace(strings.Join(current, ""))
		if text == "" {
			return
		}
		overlap := strings.TrimLeftFunc(carried, unicode.IsSpace)
		if len(overlap) > len(text) {
			overlap = text
		}
		result = append(result, piece{text: text, overlap: overlap})
	}
	for _, s := range splits {
		n := utf8.RuneCountInString(s)
		if total+n > c.limits.MaxSize && len(current) > 0 {
			emit()
			for total > c.limits.MaxOverlap || (total+n > c.limits.MaxSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
			carried = strings.Join(current, "")
		}
		current = append(current, s)
		total += n
	}
	if len(current) > 0 {
		emit()
	}
	return result
}

// splitKeep splits text after each separator so the separator stays with the preceding piece.
// An empty separator splits into characters.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
