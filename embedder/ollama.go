package embedder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/troupe/internal/httpclient"
)

// ollamaEmbeddingRequest mirrors Ollama's /api/embeddings request body.
type ollamaEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder embeds text via a local Ollama server's embeddings
// endpoint, grounded in the teacher's hand-rolled-HTTP-provider pattern.
// Ollama has no batch embeddings endpoint, so EmbedBatch issues one request
// per input.
type OllamaEmbedder struct {
	http      *httpclient.Client
	model     string
	dimension int
}

// NewOllamaEmbedder constructs an OllamaEmbedder against a local or remote
// Ollama server.
func NewOllamaEmbedder(baseURL, model string, dimension int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		http:      httpclient.New(baseURL, nil, 0),
		model:     model,
		dimension: dimension,
	}
}

func (e *OllamaEmbedder) Model() string  { return e.model }
func (e *OllamaEmbedder) Dimension() int { return e.dimension }
func (e *OllamaEmbedder) Close() error   { return nil }

// Embed computes a single embedding vector.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embedder: marshaling ollama request: %w", err)
	}

	status, respBody, _, err := e.http.PostJSON(ctx, "/api/embeddings", payload)
	if err != nil {
		return nil, fmt.Errorf("embedder: ollama embed: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("embedder: ollama embed: status %d: %s", status, respBody)
	}

	var out ollamaEmbeddingResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("embedder: parsing ollama response: %w", err)
	}
	return out.Embedding, nil
}

// EmbedBatch embeds each text sequentially since Ollama's embeddings API is
// single-input.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
