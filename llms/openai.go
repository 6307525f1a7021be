package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kadirpekel/troupe/internal/httpclient"
)

// openAIRequest mirrors the OpenAI chat-completions request body. Built by
// hand rather than via the official SDK, matching the teacher's own
// provider implementations.
type openAIRequest struct {
	Model            string          `json:"model"`
	Messages         []openAIMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens,omitempty"`
	Temperature      float64         `json:"temperature,omitempty"`
	TopP             float64         `json:"top_p,omitempty"`
	FrequencyPenalty float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64         `json:"presence_penalty,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string             `json:"model"`
	Choices []openAIChoice     `json:"choices"`
	Usage   openAIUsage        `json:"usage"`
	Error   *openAIErrorDetail `json:"error,omitempty"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data  []openAIEmbeddingDatum `json:"data"`
	Usage openAIUsage            `json:"usage"`
	Error *openAIErrorDetail     `json:"error,omitempty"`
}

type openAIEmbeddingDatum struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// OpenAIProvider implements LLMProvider and EmbeddingProvider against the
// OpenAI chat-completions and embeddings endpoints. The same implementation
// serves any OpenAI-compatible self-hosted endpoint by overriding BaseURL.
type OpenAIProvider struct {
	http  *httpclient.Client
	retry RetryPolicy
	model string
}

// NewOpenAIProvider constructs an OpenAI-compatible provider.
func NewOpenAIProvider(baseURL, apiKey, model string, retry RetryPolicy, timeout int) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
	}
	return &OpenAIProvider{
		http:  httpclient.New(baseURL, headers, secondsOrDefault(timeout)),
		retry: retry,
		model: model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends a chat-completion request, retrying transient failures per
// the configured RetryPolicy.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	body := openAIRequest{
		Model:            model,
		Messages:         toOpenAIMessages(req.Messages),
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FreqPenalty,
		PresencePenalty:  req.PresencePenalty,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llms: marshaling openai request: %w", err)
	}

	var out openAIResponse
	err = p.retry.Do(ctx, "openai", func(attempt int) error {
		status, respBody, headers, err := p.http.PostJSON(ctx, "/chat/completions", payload)
		if err != nil {
			return err
		}
		if status >= 400 {
			info := httpclient.ParseOpenAIRateLimitHeaders(headers)
			return &httpclient.RetryableError{
				StatusCode: status,
				Message:    string(respBody),
				RetryAfter: info.RetryAfter,
			}
		}
		return json.Unmarshal(respBody, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("llms: openai completion: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("llms: openai error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("llms: openai returned no choices")
	}

	return &CompletionResponse{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

// Embed sends an embeddings request.
func (p *OpenAIProvider) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	body := openAIEmbeddingRequest{Model: req.Model, Input: req.Input}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llms: marshaling openai embedding request: %w", err)
	}

	var out openAIEmbeddingResponse
	err = p.retry.Do(ctx, "openai-embeddings", func(attempt int) error {
		status, respBody, headers, err := p.http.PostJSON(ctx, "/embeddings", payload)
		if err != nil {
			return err
		}
		if status >= 400 {
			info := httpclient.ParseOpenAIRateLimitHeaders(headers)
			return &httpclient.RetryableError{StatusCode: status, Message: string(respBody), RetryAfter: info.RetryAfter}
		}
		return json.Unmarshal(respBody, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("llms: openai embedding: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("llms: openai embedding error: %s", out.Error.Message)
	}

	embeddings := make([][]float32, len(out.Data))
	for _, d := range out.Data {
		embeddings[d.Index] = d.Embedding
	}

	return &EmbeddingResponse{
		Embeddings: embeddings,
		Usage: Usage{
			PromptTokens: out.Usage.PromptTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
	}, nil
}

func toOpenAIMessages(msgs []Message) []openAIMessage {
	out := make([]openAIMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openAIMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func secondsOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}
