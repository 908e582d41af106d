package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/gitfolio/internal/embedding"
)

func TestClient_Embed(t *testing.T) {
	t.Parallel()

	t.Run("should place vectors by returned index", func(t *testing.T) {
		t.Parallel()

		// given
		var gotInput []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			gotInput = req.Input
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": [
				{"object": "embedding", "index": 1, "embedding": [0.2]},
				{"object": "embedding", "index": 0, "embedding": [0.1]}
			]}`))
		}))
		t.Cleanup(srv.Close)
		client := embedding.NewClient(srv.URL, "k", "text-embedding-3-small")

		// when
		vecs, err := client.Embed(context.Background(), []string{"octo/a: Does X", "  "})

		// then
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.1}, {0.2}}, vecs)
		assert.Equal(t, []string{"octo/a: Does X", " "}, gotInput)
	})

	t.Run("should return nothing for no input without calling the API", func(t *testing.T) {
		t.Parallel()

		// given
		client := embedding.NewClient("http://127.0.0.1:0", "k", "m")

		// when
		vecs, err := client.Embed(context.Background(), nil)

		// then
		require.NoError(t, err)
		assert.Empty(t, vecs)
	})

	t.Run("should fail a query without a vector", func(t *testing.T) {
		t.Parallel()

		// given
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
		}))
		t.Cleanup(srv.Close)
		client := embedding.NewClient(srv.URL, "k", "m")

		// when
		_, err := client.EmbedQuery(context.Background(), "cli tools")

		// then
		require.ErrorIs(t, err, embedding.ErrNoEmbedding)
	})
}
