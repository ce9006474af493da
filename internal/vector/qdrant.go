package vector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/provider"
	"go.uber.org/zap"
)

const defaultUpsertBatch = 64

// pointNamespace derives stable point IDs from chunk IDs; Qdrant accepts only UUIDs or integers.
var pointNamespace = uuid.MustParse("6f1c0e4a-8a8e-4f6b-9a52-2f3c1d7b9e10")

// QdrantStore talks to Qdrant over its REST API. Payloads use the page_content/metadata
// layout so collections are interchangeable with other LangChain-style writers.
type QdrantStore struct {
	client      *provider.Client
	upsertBatch int
	logger      *zap.Logger
}

// NewQdrantStore creates a store that sends requests through client. logger may be nil.
func NewQdrantStore(client *provider.Client, upsertBatch int, logger *zap.Logger) *QdrantStore {
	if upsertBatch <= 0 {
		upsertBatch = defaultUpsertBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QdrantStore{client: client, upsertBatch: upsertBatch, logger: logger}
}

type qdrantPayload struct {
	PageContent string         `json:"page_content"`
	Metadata    qdrantMetadata `json:"metadata"`
}

type qdrantMetadata struct {
	Source        string `json:"source,omitempty"`
	Page          int    `json:"page,omitempty"`
	ChunkID       string `json:"chunk_id,omitempty"`
	ChunkIndex    int    `json:"chunk_index"`
	OverlapPrefix string `json:"overlap_prefix,omitempty"`
}

type qdrantPoint struct {
	ID      string        `json:"id"`
	Vector  []float32     `json:"vector"`
	Payload qdrantPayload `json:"payload"`
}

func collectionPath(name string) string {
	return "/collections/" + url.PathEscape(name)
}

// CollectionInfo reads points_count from the collection info; when absent it asks the exact
// count endpoint. If neither answers, CountKnown is false.
func (q *QdrantStore) CollectionInfo(ctx context.Context, name string) (CollectionInfo, error) {
	var info struct {
		Result struct {
			Status      string `json:"status"`
			PointsCount *int   `json:"points_count"`
		} `json:"result"`
	}
	err := q.client.DoJSON(ctx, http.MethodGet, collectionPath(name), nil, &info)
	if provider.IsNotFound(err) {
		return CollectionInfo{}, nil
	}
	if err != nil {
		return CollectionInfo{}, err
	}
	if info.Result.PointsCount != nil {
		return CollectionInfo{Exists: true, PointCount: *info.Result.PointsCount, CountKnown: true}, nil
	}

	var count struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err = q.client.DoJSON(ctx, http.MethodPost, collectionPath(name)+"/points/count", map[string]bool{"exact": true}, &count)
	if err != nil {
		q.logger.Warn("qdrant point count unavailable", zap.String("collection", name), zap.Error(err))
		return CollectionInfo{Exists: true}, nil
	}
	return CollectionInfo{Exists: true, PointCount: count.Result.Count, CountKnown: true}, nil
}

// Search runs a nearest-neighbour query with payloads.
func (q *QdrantStore) Search(ctx context.Context, name string, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any           `json:"id"`
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	err := q.client.DoJSON(ctx, http.MethodPost, collectionPath(name)+"/points/search", req, &resp)
	if provider.IsNotFound(err) {
		return nil, fmt.Errorf("search %s: %w", name, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(resp.Result))
	for i, r := range resp.Result {
		md := r.Payload.Metadata
		id := md.ChunkID
		if id == "" {
			id = fmt.Sprint(r.ID)
		}
		hits[i] = Hit{
			Chunk: models.Chunk{
				ID:            id,
				Text:          r.Payload.PageContent,
				SourceID:      md.Source,
				Page:          md.Page,
				Index:         md.ChunkIndex,
				OverlapPrefix: md.OverlapPrefix,
			},
			Score: r.Score,
		}
	}
	return hits, nil
}

// CreateFromEntries drops the collection, recreates it with cosine distance and upserts
// entries in batches, waiting for each batch to be applied.
func (q *QdrantStore) CreateFromEntries(ctx context.Context, name string, dimensions int, entries []models.IndexEntry) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	path := collectionPath(name)
	if err := q.client.DoJSON(ctx, http.MethodDelete, path, nil, nil); err != nil && !provider.IsNotFound(err) {
		return fmt.Errorf("drop collection %s: %w", name, err)
	}
	create := map[string]any{
		"vectors": map[string]any{"size": dimensions, "distance": "Cosine"},
	}
	if err := q.client.DoJSON(ctx, http.MethodPut, path, create, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	for start := 0; start < len(entries); start += q.upsertBatch {
		end := min(start+q.upsertBatch, len(entries))
		points := make([]qdrantPoint, 0, end-start)
		for _, e := range entries[start:end] {
			if len(e.Vector) != dimensions {
				return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), dimensions)
			}
			c := e.Chunk
			points = append(points, qdrantPoint{
				ID:     uuid.NewSHA1(pointNamespace, []byte(c.ID)).String(),
				Vector: e.Vector,
				Payload: qdrantPayload{
					PageContent: c.Text,
					Metadata: qdrantMetadata{
						Source:        c.SourceID,
						Page:          c.Page,
						ChunkID:       c.ID,
						ChunkIndex:    c.Index,
						OverlapPrefix: c.OverlapPrefix,
					},
				},
			})
		}
		if err := q.client.DoJSON(ctx, http.MethodPut, path+"/points?wait=true", map[string]any{"points": points}, nil); err != nil {
			return fmt.Errorf("upsert points %d-%d: %w", start, end, err)
		}
		q.logger.Debug("qdrant batch upserted", zap.String("collection", name), zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (q *QdrantStore) Close() error {
	return nil
}
