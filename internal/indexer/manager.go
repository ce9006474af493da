package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hyperjump/villagerag/internal/embedding"
	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoDocuments is returned when the corpus yields no chunks, so there is nothing to index.
// It is not cached: a later call rebuilds once documents appear.
var ErrNoDocuments = errors.New("no documents to index")

const (
	defaultEmbedBatch = 64
	defaultSmokeQuery = "horarios del centro comercial"
	buildKey          = "index"
)

// Index is a queryable handle on a populated collection. It is safe for concurrent use.
type Index struct {
	store      vector.Store
	embedder   embedding.Embedder
	collection string
	points     int
	built      bool
}

// Collection returns the collection name.
func (i *Index) Collection() string {
	return i.collection
}

// Points returns the number of points, or -1 when the store could not report it.
func (i *Index) Points() int {
	return i.points
}

// Built reports whether this handle came from a fresh build rather than reuse.
func (i *Index) Built() bool {
	return i.built
}

// SimilaritySearch embeds query and returns up to k chunks by descending similarity.
func (i *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]vector.Hit, error) {
	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := i.store.Search(ctx, i.collection, vec, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return hits, nil
}

// Manager owns the index lifecycle: it reuses a populated collection or builds one from
// the corpus, at most once at a time, and caches the resulting handle.
type Manager struct {
	store        vector.Store
	embedder     embedding.Embedder
	source       ChunkSource
	collection   string
	embedBatch   int
	smokeQuery   string
	buildTimeout time.Duration
	logger       *zap.Logger

	group  singleflight.Group
	handle atomic.Pointer[Index]
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a logger for build and reuse decisions.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithEmbedBatch sets how many chunks are embedded per provider call.
func WithEmbedBatch(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.embedBatch = n
		}
	}
}

// WithSmokeQuery sets the query run after connecting to check the index answers.
func WithSmokeQuery(q string) ManagerOption {
	return func(m *Manager) {
		if q != "" {
			m.smokeQuery = q
		}
	}
}

// WithBuildTimeout bounds a build independently of the caller's context; 0 means no bound.
func WithBuildTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.buildTimeout = d }
}

// NewManager creates a manager for the named collection.
func NewManager(store vector.Store, embedder embedding.Embedder, source ChunkSource, collection string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		embedder:   embedder,
		source:     source,
		collection: collection,
		embedBatch: defaultEmbedBatch,
		smokeQuery: defaultSmokeQuery,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ready reports whether an index handle is cached. It never triggers a build.
func (m *Manager) Ready() bool {
	return m.handle.Load() != nil
}

// Current returns the cached handle, or nil.
func (m *Manager) Current() *Index {
	return m.handle.Load()
}

// GetOrBuild returns the cached handle or produces one. Concurrent callers share a single
// build. The build itself is detached from ctx so one caller giving up does not abort it for
// the others; ctx only bounds how long this caller waits.
// Returns ErrNoDocuments when the corpus is empty.
func (m *Manager) GetOrBuild(ctx context.Context) (*Index, error) {
	if idx := m.handle.Load(); idx != nil {
		return idx, nil
	}
	ch := m.group.DoChan(buildKey, func() (any, error) {
		if idx := m.handle.Load(); idx != nil {
			return idx, nil
		}
		bctx := context.WithoutCancel(ctx)
		if m.buildTimeout > 0 {
			var cancel context.CancelFunc
			bctx, cancel = context.WithTimeout(bctx, m.buildTimeout)
			defer cancel()
		}
		idx, err := m.connectOrBuild(bctx)
		if err != nil {
			return nil, err
		}
		m.handle.Store(idx)
		return idx, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

func (m *Manager) connectOrBuild(ctx context.Context) (*Index, error) {
	log := m.logger.With(zap.String("collection", m.collection))
	start := time.Now()

	populated, points, err := m.populated(ctx, log)
	if err != nil {
		return nil, err
	}

	idx := &Index{store: m.store, embedder: m.embedder, collection: m.collection, points: points}
	if populated {
		log.Info("reusing existing collection", zap.Int("points", points))
	} else {
		n, err := m.build(ctx, log)
		if err != nil {
			return nil, err
		}
		idx.points = n
		idx.built = true
		log.Info("collection built", zap.Int("points", n), zap.Duration("took", time.Since(start)))
	}

	hits, err := idx.SimilaritySearch(ctx, m.smokeQuery, 1)
	if err != nil {
		log.Error("index smoke test failed", zap.Error(err))
		return nil, fmt.Errorf("index smoke test: %w", err)
	}
	log.Info("index smoke test passed", zap.String("query", m.smokeQuery), zap.Int("hits", len(hits)))
	return idx, nil
}

// populated decides whether the collection can be reused. The point count comes from the
// store when it can report one; otherwise a zero-vector search stands in, and only a hit
// counts as populated. points is -1 when unknown.
func (m *Manager) populated(ctx context.Context, log *zap.Logger) (bool, int, error) {
	info, err := m.store.CollectionInfo(ctx, m.collection)
	if err != nil {
		log.Error("collection info failed", zap.Error(err))
		return false, 0, fmt.Errorf("collection info: %w", err)
	}
	if !info.Exists {
		log.Info("collection missing, building")
		return false, 0, nil
	}
	if info.CountKnown {
		if info.PointCount == 0 {
			log.Info("collection empty, building")
		}
		return info.PointCount > 0, info.PointCount, nil
	}

	log.Warn("point count unavailable, probing with a zero vector")
	hits, err := m.store.Search(ctx, m.collection, make([]float32, m.embedder.Dimensions()), 1)
	if err != nil {
		log.Warn("zero-vector probe failed, treating collection as empty", zap.Error(err))
		return false, 0, nil
	}
	return len(hits) > 0, -1, nil
}

func (m *Manager) build(ctx context.Context, log *zap.Logger) (int, error) {
	chunks, err := m.source.Chunks(ctx)
	if err != nil {
		log.Error("loading documents failed", zap.Error(err))
		return 0, err
	}
	if len(chunks) == 0 {
		log.Warn("no chunks produced, index unavailable")
		return 0, ErrNoDocuments
	}

	entries := make([]models.IndexEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += m.embedBatch {
		end := min(start+m.embedBatch, len(chunks))
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}
		vecs, err := m.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			log.Error("embedding chunks failed", zap.Int("from", start), zap.Error(err))
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vecs) != len(texts) {
			return 0, fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vecs), len(texts))
		}
		for i, c := range chunks[start:end] {
			entries = append(entries, models.IndexEntry{Chunk: c, Vector: vecs[i]})
		}
		log.Debug("chunks embedded", zap.Int("done", end), zap.Int("total", len(chunks)))
	}

	if err := m.store.CreateFromEntries(ctx, m.collection, m.embedder.Dimensions(), entries); err != nil {
		log.Error("creating collection failed", zap.Error(err))
		return 0, fmt.Errorf("create collection: %w", err)
	}
	return len(entries), nil
}
