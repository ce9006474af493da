package vector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/provider"
	"github.com/hyperjump/villagerag/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant implements the subset of the Qdrant REST API the store uses.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string][]qdrantPoint
	sizes       map[string]int
	hideCount   bool // omit points_count from collection info
	noCountAPI  bool // respond 500 to the count endpoint
	upserts     int
	deletes     int
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: map[string][]qdrantPoint{}, sizes: map[string]int{}}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	notFound := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":{"error":"Not found: Collection doesn't exist!"}}`))
	}
	ok := func(w http.ResponseWriter, result any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok"})
	}
	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		pts, exists := f.collections[r.PathValue("name")]
		if !exists {
			notFound(w)
			return
		}
		result := map[string]any{"status": "green"}
		if !f.hideCount {
			result["points_count"] = len(pts)
		}
		ok(w, result)
	})
	mux.HandleFunc("DELETE /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deletes++
		delete(f.collections, r.PathValue("name"))
		ok(w, true)
	})
	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		f.collections[name] = []qdrantPoint{}
		f.sizes[name] = body.Vectors.Size
		ok(w, true)
	})
	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []qdrantPoint `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		if _, exists := f.collections[name]; !exists {
			notFound(w)
			return
		}
		f.upserts++
		f.collections[name] = append(f.collections[name], body.Points...)
		ok(w, map[string]any{"status": "completed"})
	})
	mux.HandleFunc("POST /collections/{name}/points/count", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.noCountAPI {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		ok(w, map[string]int{"count": len(f.collections[r.PathValue("name")])})
	})
	mux.HandleFunc("POST /collections/{name}/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vector []float32 `json:"vector"`
			Limit  int       `json:"limit"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		pts, exists := f.collections[r.PathValue("name")]
		if !exists {
			notFound(w)
			return
		}
		if len(body.Vector) != f.sizes[r.PathValue("name")] {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":{"error":"Wrong input: Vector dimension error"}}`))
			return
		}
		type scored struct {
			ID      string        `json:"id"`
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		}
		out := make([]scored, 0, len(pts))
		for _, p := range pts {
			out = append(out, scored{ID: p.ID, Score: utils.Cosine(body.Vector, p.Vector), Payload: p.Payload})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
		if len(out) > body.Limit {
			out = out[:body.Limit]
		}
		ok(w, out)
	})
	return mux
}

func newTestQdrant(t *testing.T, f *fakeQdrant, batch int) *QdrantStore {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	client := provider.NewClient(provider.Options{Name: "qdrant", BaseURL: srv.URL})
	return NewQdrantStore(client, batch, nil)
}

func TestQdrantStore(t *testing.T) {
	f := newFakeQdrant()
	exerciseStore(t, newTestQdrant(t, f, 2))
	assert.GreaterOrEqual(t, f.upserts, 2, "three entries with batch size 2 need two upserts")
}

func TestQdrantStore_payloadLayout(t *testing.T) {
	f := newFakeQdrant()
	s := newTestQdrant(t, f, 10)
	ch := models.Chunk{ID: "docs/guia.pdf#p3#c0", Text: "Abierto de 10:00 a 21:00", SourceID: "docs/guia.pdf", Page: 3}
	require.NoError(t, s.CreateFromEntries(context.Background(), "docs", 2, []models.IndexEntry{{Chunk: ch, Vector: []float32{1, 0}}}))

	pts := f.collections["docs"]
	require.Len(t, pts, 1)
	assert.Equal(t, "Abierto de 10:00 a 21:00", pts[0].Payload.PageContent)
	assert.Equal(t, "docs/guia.pdf", pts[0].Payload.Metadata.Source)
	assert.Equal(t, 3, pts[0].Payload.Metadata.Page)
	assert.Len(t, pts[0].ID, 36, "point IDs are UUIDs")

	// Deterministic IDs: rebuilding produces the same point ID.
	first := pts[0].ID
	require.NoError(t, s.CreateFromEntries(context.Background(), "docs", 2, []models.IndexEntry{{Chunk: ch, Vector: []float32{1, 0}}}))
	assert.Equal(t, first, f.collections["docs"][0].ID)
	assert.Equal(t, 2, f.sizes["docs"])
}

func TestQdrantStore_countFallbacks(t *testing.T) {
	ctx := context.Background()
	f := newFakeQdrant()
	s := newTestQdrant(t, f, 10)
	require.NoError(t, s.CreateFromEntries(ctx, "docs", 2, []models.IndexEntry{entry("a", 1, 1, 0), entry("b", 1, 0, 1)}))

	f.hideCount = true
	info, err := s.CollectionInfo(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, CollectionInfo{Exists: true, PointCount: 2, CountKnown: true}, info)

	f.noCountAPI = true
	info, err = s.CollectionInfo(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.False(t, info.CountKnown)
}

func TestQdrantStore_serverErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":{"error":"Invalid api-key"}}`))
	}))
	defer srv.Close()
	s := NewQdrantStore(provider.NewClient(provider.Options{Name: "qdrant", BaseURL: srv.URL}), 0, nil)

	_, err := s.CollectionInfo(context.Background(), "docs")
	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "Invalid api-key", pe.Message)
}
