package llms

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ResponseCache is a content-addressed cache of raw provider responses,
// keyed by a digest of the request. It persists to a JSON file with
// atomic replace-on-flush, the same durability pattern the simulation
// trace cache uses (simulation.SaveTraceCache) but scoped to LLM calls rather
// than the full transaction trace chain.
type ResponseCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]json.RawMessage
	dirty   bool
}

// OpenResponseCache loads an existing cache file, or starts an empty one if
// the file does not exist yet.
func OpenResponseCache(path string) (*ResponseCache, error) {
	c := &ResponseCache{
		path:    path,
		entries: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("llms: opening response cache: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("llms: parsing response cache: %w", err)
	}
	return c, nil
}

// Digest computes the cache key for a completion request: a stable digest
// of the provider name, model, temperature, top_p, and message sequence.
func Digest(provider string, req CompletionRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%f|%f", provider, req.Model, req.Temperature, req.TopP)
	for _, m := range req.Messages {
		fmt.Fprintf(h, "|%s:%s", m.Role, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response by digest.
func (c *ResponseCache) Get(digest string) (*CompletionResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.entries[digest]
	if !ok {
		return nil, false
	}
	var resp CompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Put stores a response under digest and marks the cache dirty. Call Flush
// to persist.
func (c *ResponseCache) Put(digest string, resp *CompletionResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("llms: marshaling cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = raw
	c.dirty = true
	return nil
}

// Flush writes the cache to disk atomically (write to a temp file, then
// rename), if there are unpersisted changes.
func (c *ResponseCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("llms: marshaling response cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".response-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("llms: creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("llms: writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("llms: closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("llms: renaming temp cache file: %w", err)
	}

	c.dirty = false
	return nil
}
