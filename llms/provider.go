package llms

import "context"

// LLMProvider is the provider-agnostic chat-completion client an Agent
// depends on. Every provider implementation wraps its own hand-rolled HTTP
// request/response shape behind this interface.
type LLMProvider interface {
	// Name identifies the provider implementation ("openai", "anthropic").
	Name() string

	// Complete sends a chat-completion request and returns the assistant's
	// reply. Implementations are responsible for their own wire format.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// EmbeddingProvider is the embedding-capable counterpart to LLMProvider,
// implemented by providers that also expose an embeddings endpoint.
type EmbeddingProvider interface {
	Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
}
