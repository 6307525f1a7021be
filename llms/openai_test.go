package llms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(openAIResponse{
			Model: "gpt-4o-mini",
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: "hello there"}},
			},
			Usage: openAIUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}))
	defer server.Close()

	retry := NewRetryPolicy(3, 0.01, 2)
	provider := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini", retry, 5)

	resp, err := provider.Complete(t.Context(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIProvider_RetriesOn429(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []openAIChoice{{Message: openAIMessage{Content: "ok"}}},
		})
	}))
	defer server.Close()

	retry := NewRetryPolicy(5, 0.001, 1.1)
	provider := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini", retry, 5)

	resp, err := provider.Complete(t.Context(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestOpenAIProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Data: []openAIEmbeddingDatum{
				{Embedding: []float32{0.1, 0.2}, Index: 0},
				{Embedding: []float32{0.3, 0.4}, Index: 1},
			},
		})
	}))
	defer server.Close()

	retry := NewRetryPolicy(3, 0.01, 2)
	provider := NewOpenAIProvider(server.URL, "test-key", "text-embedding-3-small", retry, 5)

	resp, err := provider.Embed(t.Context(), EmbeddingRequest{Input: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, resp.Embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, resp.Embeddings[1])
}
