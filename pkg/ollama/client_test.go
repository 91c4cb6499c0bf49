package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tagsBody = `{
	"models": [
		{"name": "mistral:latest", "model": "mistral:latest", "size": 4109865159, "digest": "abc"},
		{"name": "qwen3:latest", "model": "qwen3:latest", "size": 5200000000, "digest": "def"}
	]
}`

func TestTags(t *testing.T) {
	t.Run("lists available models", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			fmt.Fprint(w, tagsBody)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Tags(context.Background())
		require.NoError(t, err)

		require.Len(t, resp.Models, 2)
		assert.Equal(t, "mistral:latest", resp.Models[0].Name)
	})

	t.Run("non-OK status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Tags(context.Background())
		assert.Error(t, err)
	})

	t.Run("connection refused is an error", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		_, err := client.Tags(context.Background())
		assert.Error(t, err)
	})
}

func TestCheckHealth(t *testing.T) {
	t.Run("healthy with model names", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, tagsBody)
		}))
		defer server.Close()

		status := NewClient(server.URL).CheckHealth(context.Background())
		assert.True(t, status.Available)
		assert.NoError(t, status.Error)
		assert.Equal(t, []string{"mistral:latest", "qwen3:latest"}, status.ModelNames())
	})

	t.Run("unreachable runtime reports unavailable", func(t *testing.T) {
		status := NewClient("http://127.0.0.1:1").CheckHealth(context.Background())
		assert.False(t, status.Available)
		assert.Error(t, status.Error)
		assert.Empty(t, status.ModelNames())
	})
}
