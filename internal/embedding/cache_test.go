package embedding

import (
	"context"
	"sync"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestEmbeddingCache_GetRefreshesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a")
	c.Set("c", []float32{3}) // evicts b, not a
	if _, ok := c.Get("a"); !ok {
		t.Error("recently read entry should survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestEmbeddingCache_concurrentGet(t *testing.T) {
	c := NewEmbeddingCache(8)
	c.Set("k", []float32{1})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("k")
			}
		}()
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

type countingEmbedder struct {
	*MockEmbedder
	mu     sync.Mutex
	single int
	batch  [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.single++
	c.mu.Unlock()
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batch = append(c.batch, texts)
	c.mu.Unlock()
	return c.MockEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	e := NewCachedEmbedder(inner, 10)

	first, err := e.Embed(ctx, "horarios")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.Embed(ctx, "horarios")
	if inner.single != 1 {
		t.Errorf("inner Embed called %d times, want 1", inner.single)
	}
	if first[0] != second[0] {
		t.Error("cached vector differs")
	}

	vecs, err := e.EmbedBatch(ctx, []string{"horarios", "parking", "tiendas"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || vecs[0][0] != first[0] {
		t.Errorf("unexpected batch result")
	}
	if len(inner.batch) != 1 || len(inner.batch[0]) != 2 {
		t.Errorf("expected one inner batch of the 2 misses, got %v", inner.batch)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}
