package indexer

import (
	"github.com/hyperjump/villagerag/internal/models"
	"go.uber.org/zap"
)

// ChunkStats summarises chunk lengths in characters.
type ChunkStats struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
}

// ComputeStats returns length statistics for chunks. All fields are zero for an empty slice.
func ComputeStats(chunks []models.Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}
	s := ChunkStats{Count: len(chunks), Min: chunks[0].Len()}
	total := 0
	for _, c := range chunks {
		n := c.Len()
		total += n
		if n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
	}
	s.Avg = float64(total) / float64(len(chunks))
	return s
}

func (s ChunkStats) fields() []zap.Field {
	return []zap.Field{
		zap.Int("chunks", s.Count),
		zap.Float64("avg_len", s.Avg),
		zap.Int("min_len", s.Min),
		zap.Int("max_len", s.Max),
	}
}
