package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_ParsesVector(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, _ = req["model"].(string)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "text-embedding-ada-002"})
	vec, err := c.Embed(context.Background(), "what is ludicrous mode")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "text-embedding-ada-002", gotModel)
}

func TestEmbed_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1}}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbed_TerminalErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"input too long"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Embed(context.Background(), "hello")

	var embErr *EmbeddingError
	require.True(t, errors.As(err, &embErr), "expected *EmbeddingError, got %T", err)
	assert.Equal(t, DefaultModel, embErr.Model)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestEmbed_ExhaustedRetriesYieldTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Embed(context.Background(), "hello")

	var embErr *EmbeddingError
	require.True(t, errors.As(err, &embErr))
	assert.Contains(t, embErr.Error(), "status 500")
}
