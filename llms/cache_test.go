package llms

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callCountingProvider struct {
	calls int
	resp  CompletionResponse
}

func (p *callCountingProvider) Name() string { return "fake" }

func (p *callCountingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	p.calls++
	resp := p.resp
	return &resp, nil
}

func TestResponseCache_GetPutRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := OpenResponseCache(path)
	require.NoError(t, err)

	req := CompletionRequest{Model: "gpt-4o-mini", Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	digest := Digest("openai", req)

	_, ok := cache.Get(digest)
	assert.False(t, ok)

	require.NoError(t, cache.Put(digest, &CompletionResponse{Content: "hello"}))
	got, ok := cache.Get(digest)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)
}

func TestResponseCache_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := OpenResponseCache(path)
	require.NoError(t, err)

	req := CompletionRequest{Model: "gpt-4o-mini", Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	digest := Digest("openai", req)
	require.NoError(t, cache.Put(digest, &CompletionResponse{Content: "hello"}))
	require.NoError(t, cache.Flush())

	reloaded, err := OpenResponseCache(path)
	require.NoError(t, err)
	got, ok := reloaded.Get(digest)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)
}

func TestCachingProvider_SecondCallHitsCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := OpenResponseCache(path)
	require.NoError(t, err)

	inner := &callCountingProvider{resp: CompletionResponse{Content: "hello"}}
	provider := NewCachingProvider(inner, cache)

	req := CompletionRequest{Model: "gpt-4o-mini", Messages: []Message{{Role: RoleUser, Content: "hi"}}}

	resp1, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp1.Content)

	resp2, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp2.Content)

	assert.Equal(t, 1, inner.calls, "second identical call should hit the cache, not the provider")
}

func TestDigest_DiffersOnContent(t *testing.T) {
	a := CompletionRequest{Model: "m", Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	b := CompletionRequest{Model: "m", Messages: []Message{{Role: RoleUser, Content: "bye"}}}
	assert.NotEqual(t, Digest("openai", a), Digest("openai", b))
}
