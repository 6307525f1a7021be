package embedder

import (
	"context"
	"fmt"

	"github.com/kadirpekel/troupe/llms"
)

// OpenAIEmbedder adapts an llms.EmbeddingProvider (OpenAI's embeddings
// endpoint) to the Embedder interface semantic memory depends on.
type OpenAIEmbedder struct {
	provider  llms.EmbeddingProvider
	model     string
	dimension int
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder. dimension is the known
// output size for model (e.g. 1536 for text-embedding-3-small); semantic
// memory needs it up front to size its vector collection before the first
// call completes.
func NewOpenAIEmbedder(provider llms.EmbeddingProvider, model string, dimension int) *OpenAIEmbedder {
	return &OpenAIEmbedder{provider: provider, model: model, dimension: dimension}
}

func (e *OpenAIEmbedder) Model() string  { return e.model }
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }
func (e *OpenAIEmbedder) Close() error   { return nil }

// Embed computes a single embedding vector.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch computes embedding vectors for a batch of texts in one call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.provider.Embed(ctx, llms.EmbeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedder: openai embed: %w", err)
	}
	return resp.Embeddings, nil
}
