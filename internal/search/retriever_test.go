package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	hits  []vector.Hit
	err   error
	gotK  int
	query string
}

func (f *fakeSearcher) SimilaritySearch(ctx context.Context, query string, k int) ([]vector.Hit, error) {
	f.gotK, f.query = k, query
	return f.hits, f.err
}

func hit(id string, score float64) vector.Hit {
	return vector.Hit{Chunk: models.Chunk{ID: id, Text: id}, Score: score}
}

func TestRetrieve_ranksByDescendingScore(t *testing.T) {
	s := &fakeSearcher{hits: []vector.Hit{hit("b", 0.5), hit("a", 0.9), hit("c", 0.1)}}
	got, err := Retrieve(context.Background(), s, "horario", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, s.gotK)
	assert.Equal(t, "horario", s.query)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, got[i].Chunk.ID)
		assert.Equal(t, i+1, got[i].Rank)
	}
	assert.Equal(t, 0.9, got[0].Score)
}

func TestRetrieve_capsAtK(t *testing.T) {
	s := &fakeSearcher{hits: []vector.Hit{hit("a", 0.9), hit("b", 0.8), hit("c", 0.7)}}
	got, err := Retrieve(context.Background(), s, "q", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetrieve_errors(t *testing.T) {
	_, err := Retrieve(context.Background(), &fakeSearcher{}, "q", 0)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = Retrieve(context.Background(), &fakeSearcher{err: boom}, "q", 3)
	assert.ErrorIs(t, err, boom)
}

func TestRetrieve_empty(t *testing.T) {
	got, err := Retrieve(context.Background(), &fakeSearcher{}, "q", 8)
	require.NoError(t, err)
	assert.Empty(t, got)
}
