// Package llms provides the LLM client abstraction: a provider-agnostic
// chat-completion interface, hand-rolled HTTP providers for OpenAI-compatible
// and Anthropic APIs, a retry policy, and a response cache.
package llms

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat-completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting for a completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is the provider-agnostic request shape passed to
// LLMProvider.Complete.
type CompletionRequest struct {
	Model           string
	Messages        []Message
	MaxTokens       int
	Temperature     float64
	TopP            float64
	FreqPenalty     float64
	PresencePenalty float64
}

// CompletionResponse is the provider-agnostic response shape.
type CompletionResponse struct {
	Content string
	Usage   Usage
	Model   string
}

// EmbeddingRequest requests vector embeddings for a batch of texts.
type EmbeddingRequest struct {
	Model string
	Input []string
}

// EmbeddingResponse carries one embedding vector per input text, in order.
type EmbeddingResponse struct {
	Embeddings [][]float32
	Usage      Usage
}
