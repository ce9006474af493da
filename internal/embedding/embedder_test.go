package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/villagerag/internal/provider"
	"github.com/hyperjump/villagerag/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_deterministicAndNormalized(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "La Roca Village abre de 10:00 a 21:00h")
	require.NoError(t, err)
	b, _ := e.Embed(ctx, "La Roca Village abre de 10:00 a 21:00h")
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, utils.Cosine(a, a), 1e-6)
	assert.Len(t, a, 64)
}

func TestMockEmbedder_sharedWordsScoreHigher(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "horario de apertura")
	near, _ := e.Embed(ctx, "El horario de apertura es de 10:00 a 21:00")
	far, _ := e.Embed(ctx, "Parking gratuito para visitantes")
	assert.Greater(t, utils.Cosine(q, near), utils.Cosine(q, far))
}

func fakeOpenAI(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, len(req.Input))
		// Reverse order to check results are placed by index.
		for i := range req.Input {
			v := make([]float32, dims)
			v[0] = float32(len(req.Input[i]))
			data[len(req.Input)-1-i] = item{Index: i, Embedding: v}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	srv := fakeOpenAI(t, 4)
	defer srv.Close()
	client := provider.NewClient(provider.Options{Name: "openai", BaseURL: srv.URL})
	e, err := NewOpenAIEmbedder(client, OpenAIConfig{Model: "text-embedding-ada-002", Dimensions: 4, BatchSize: 2})
	require.NoError(t, err)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, float32(3), vecs[2][0])

	require.NoError(t, Probe(context.Background(), e, nil))
}

func TestOpenAIEmbedder_dimensionMismatch(t *testing.T) {
	srv := fakeOpenAI(t, 3)
	defer srv.Close()
	client := provider.NewClient(provider.Options{Name: "openai", BaseURL: srv.URL})
	e, err := NewOpenAIEmbedder(client, OpenAIConfig{Model: "m", Dimensions: 1536})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "hola")
	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "expected 1536")
}

func TestNewOpenAIEmbedder_validation(t *testing.T) {
	client := provider.NewClient(provider.Options{Name: "openai"})
	_, err := NewOpenAIEmbedder(client, OpenAIConfig{Dimensions: 4})
	assert.Error(t, err)
	_, err = NewOpenAIEmbedder(client, OpenAIConfig{Model: "m"})
	assert.Error(t, err)
}
