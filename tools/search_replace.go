package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SearchReplaceTool performs a literal find-and-replace within a single
// file, failing if the search string isn't found exactly once (avoids
// silently rewriting the wrong occurrence).
type SearchReplaceTool struct{}

func NewSearchReplaceTool() *SearchReplaceTool { return &SearchReplaceTool{} }

func (t *SearchReplaceTool) Name() string       { return "search_replace" }
func (t *SearchReplaceTool) Description() string { return "Replace one occurrence of a string within a file" }
func (t *SearchReplaceTool) ActionType() string  { return "SEARCH_REPLACE" }
func (t *SearchReplaceTool) Claims(actionType string) bool {
	return actionType == "SEARCH_REPLACE"
}

func (t *SearchReplaceTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	path, _ := args["path"].(string)
	oldString, _ := args["old_string"].(string)
	newString, _ := args["new_string"].(string)
	if path == "" || oldString == "" {
		err := fmt.Errorf("path and old_string are required")
		return errorResult(t.Name(), err.Error(), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errorResult(t.Name(), "reading file", err)
	}
	content := string(data)

	count := strings.Count(content, oldString)
	if count == 0 {
		err := fmt.Errorf("old_string not found in %s", path)
		return errorResult(t.Name(), err.Error(), err)
	}
	if count > 1 {
		err := fmt.Errorf("old_string matches %d times in %s, need a unique match", count, path)
		return errorResult(t.Name(), err.Error(), err)
	}

	updated := strings.Replace(content, oldString, newString, 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return errorResult(t.Name(), "writing file", err)
	}
	return okResult(t.Name(), fmt.Sprintf("replaced 1 occurrence in %s", path), map[string]any{"path": path})
}

var _ Tool = (*SearchReplaceTool)(nil)
