// Package httpclient provides a thin, shared HTTP client for LLM provider
// implementations (chat completion and embedding calls).
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RateLimitInfo captures provider rate-limit headers for diagnostics and
// backoff tuning. Not all fields are populated by every provider.
type RateLimitInfo struct {
	RetryAfter            time.Duration
	ResetTime             int64
	RequestsRemaining     int
	TokensRemaining       int
	InputTokensRemaining  int
	OutputTokensRemaining int
}

// Client is a minimal JSON-over-HTTP client shared by provider
// implementations. It does not itself retry; retry/backoff policy lives in
// the caller (llms.RetryPolicy) so that callers can distinguish retryable
// from non-retryable failures.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Headers map[string]string
}

// New creates a Client with the given base URL, default headers, and
// request timeout.
func New(baseURL string, headers map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		Headers: headers,
	}
}

// PostJSON sends body (already-marshalled JSON) to path and returns the raw
// response body along with status code and headers for the caller to
// interpret. A non-2xx status is not itself an error returned by this
// method — callers decide retryability from the status and RateLimitInfo.
func (c *Client) PostJSON(ctx context.Context, path string, body []byte) (status int, respBody []byte, headers http.Header, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, nil, &RetryableError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, resp.Header, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, data, resp.Header, nil
}

// PostJSONStream is like PostJSON but returns the live response for the
// caller to stream (e.g. Server-Sent Events). The caller must close the
// returned ReadCloser.
func (c *Client) PostJSONStream(ctx context.Context, path string, body []byte) (status int, stream io.ReadCloser, headers http.Header, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, nil, &RetryableError{Message: err.Error(), Err: err}
	}
	return resp.StatusCode, resp.Body, resp.Header, nil
}
