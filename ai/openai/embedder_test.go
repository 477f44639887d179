package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/taskrag/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer answers /embeddings requests with vectors of the
// given width whose first component is the input index.
func fakeEmbeddingServer(t *testing.T, width int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, width)
			vec[0] = float32(i)
			data[i] = item{Object: "embedding", Embedding: vec, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	server := fakeEmbeddingServer(t, 4)
	defer server.Close()

	embedder, err := NewEmbedder(ai.NewConfig(
		ai.WithEmbeddingHost(server.URL),
		ai.WithEmbeddingModel("test-model"),
		ai.WithDimension(4),
	))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(t.Context(), []string{"первая задача", "вторая задача"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Equal(t, float32(1), vectors[1][0])

	single, err := embedder.EmbedText(t.Context(), "x^2 - 7x + 12 = 0")
	require.NoError(t, err)
	assert.Len(t, single, 4)
}

func TestEmbedder_RejectsWrongDimension(t *testing.T) {
	server := fakeEmbeddingServer(t, 3)
	defer server.Close()

	embedder, err := NewEmbedder(ai.NewConfig(
		ai.WithEmbeddingHost(server.URL),
		ai.WithDimension(4),
	))
	require.NoError(t, err)

	_, err = embedder.EmbedText(t.Context(), "text")
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	_, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost("")))
	assert.Error(t, err)
}

func TestLoadEmbedder_WithServer(t *testing.T) {
	server := fakeEmbeddingServer(t, ai.DefaultDimension)
	defer server.Close()

	embedder := ai.LoadEmbedder(t.Context(), ai.NewConfig(ai.WithEmbeddingHost(server.URL)), NewEmbedder, nil)
	assert.False(t, ai.IsDegraded(embedder))
}
