package simulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadTraceCache reads a previously-persisted trace chain from path. A
// missing file or an empty path is not an error — Begin treats it as an
// empty cache, matching a cold-start run.
func LoadTraceCache(path string) ([]TraceNode, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("simulation: opening trace cache %q: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var nodes []TraceNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("simulation: parsing trace cache %q: %w", path, err)
	}
	return nodes, nil
}

// SaveTraceCache persists nodes to path atomically: write to a temp file
// in the same directory, then rename over the destination. This is the
// same durability pattern llms.ResponseCache.Flush uses, applied here to
// the full transaction trace chain rather than just LLM responses.
func SaveTraceCache(path string, nodes []TraceNode) error {
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return fmt.Errorf("simulation: marshaling trace cache: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".trace-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("simulation: creating temp trace cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("simulation: writing temp trace cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("simulation: closing temp trace cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("simulation: renaming temp trace cache file: %w", err)
	}
	return nil
}
