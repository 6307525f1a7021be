package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileWriterTool writes text content to a file beneath a fixed root
// directory, refusing any path that would escape it.
type FileWriterTool struct {
	root string
}

// NewFileWriterTool constructs a FileWriterTool rooted at root. All writes
// are sandboxed beneath it.
func NewFileWriterTool(root string) *FileWriterTool {
	if root == "" {
		root = "."
	}
	return &FileWriterTool{root: root}
}

func (t *FileWriterTool) Name() string                 { return "write_file" }
func (t *FileWriterTool) Description() string           { return "Write text content to a file" }
func (t *FileWriterTool) ActionType() string            { return "WRITE_FILE" }
func (t *FileWriterTool) Claims(actionType string) bool { return actionType == "WRITE_FILE" }

func (t *FileWriterTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	relPath, _ := args["path"].(string)
	content, _ := args["content"].(string)
	if relPath == "" {
		return errorResult(t.Name(), "path is required", fmt.Errorf("path parameter is required"))
	}

	full, err := t.resolve(relPath)
	if err != nil {
		return errorResult(t.Name(), err.Error(), err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errorResult(t.Name(), "creating parent directory", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return errorResult(t.Name(), "writing file", err)
	}
	return okResult(t.Name(), fmt.Sprintf("wrote %d bytes to %s", len(content), relPath), map[string]any{"path": relPath})
}

// resolve joins relPath onto the tool's root and rejects any path that
// escapes it.
func (t *FileWriterTool) resolve(relPath string) (string, error) {
	full := filepath.Join(t.root, relPath)
	rootAbs, err := filepath.Abs(t.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(rootAbs, fullAbs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes sandbox root", relPath)
	}
	return full, nil
}

var _ Tool = (*FileWriterTool)(nil)
