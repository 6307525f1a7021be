package llms

import "context"

// CachingProvider wraps an LLMProvider with a ResponseCache, making
// identical requests idempotent and free on replay. Callers wrap a provider
// explicitly; nothing in this module installs it from the cache_api_calls
// config setting.
type CachingProvider struct {
	inner LLMProvider
	cache *ResponseCache
}

// NewCachingProvider wraps inner with cache.
func NewCachingProvider(inner LLMProvider, cache *ResponseCache) *CachingProvider {
	return &CachingProvider{inner: inner, cache: cache}
}

func (c *CachingProvider) Name() string { return c.inner.Name() }

// Complete returns the cached response for an identical request if present,
// otherwise delegates to the wrapped provider and caches the result.
func (c *CachingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	digest := Digest(c.inner.Name(), req)

	if cached, ok := c.cache.Get(digest); ok {
		return cached, nil
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(digest, resp); err != nil {
		return resp, nil // cache write failure must not fail the call
	}
	return resp, nil
}
