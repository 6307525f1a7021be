// Package embedder provides the text-embedding abstraction semantic memory
// uses to index and search documents, independent of the chat-completion
// LLM client.
package embedder

import "context"

// Embedder converts text into fixed-dimension vectors for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
	Close() error
}
