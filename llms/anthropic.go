package llms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/troupe/internal/httpclient"
)

// anthropicRequest mirrors the Anthropic Messages API request body.
type anthropicRequest struct {
	Model       string              `json:"model"`
	System      string              `json:"system,omitempty"`
	Messages    []anthropicMessage  `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature,omitempty"`
	TopP        float64             `json:"top_p,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Model   string                  `json:"model"`
	Usage   anthropicUsage          `json:"usage"`
	Error   *anthropicErrorDetail   `json:"error,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicProvider implements LLMProvider against the Anthropic Messages
// API. Anthropic has no separate embeddings endpoint, so this provider does
// not implement EmbeddingProvider.
type AnthropicProvider struct {
	http  *httpclient.Client
	retry RetryPolicy
	model string
}

// NewAnthropicProvider constructs an Anthropic provider.
func NewAnthropicProvider(baseURL, apiKey, model string, retry RetryPolicy, timeout int) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
	return &AnthropicProvider{
		http:  httpclient.New(baseURL, headers, secondsOrDefault(timeout)),
		retry: retry,
		model: model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends a Messages API request. System-role messages are hoisted
// into the top-level "system" field, matching the Anthropic wire format's
// separation of system prompt from the conversational turn list.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	var system string
	var turns []anthropicMessage
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	body := anthropicRequest{
		Model:       model,
		System:      system,
		Messages:    turns,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llms: marshaling anthropic request: %w", err)
	}

	var out anthropicResponse
	err = p.retry.Do(ctx, "anthropic", func(attempt int) error {
		status, respBody, headers, err := p.http.PostJSON(ctx, "/messages", payload)
		if err != nil {
			return err
		}
		if status >= 400 {
			info := httpclient.ParseAnthropicRateLimitHeaders(headers)
			return &httpclient.RetryableError{StatusCode: status, Message: string(respBody), RetryAfter: info.RetryAfter}
		}
		return json.Unmarshal(respBody, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("llms: anthropic completion: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("llms: anthropic error: %s", out.Error.Message)
	}

	var text string
	for _, block := range out.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &CompletionResponse{
		Content: text,
		Model:   out.Model,
		Usage: Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
			TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
		},
	}, nil
}
