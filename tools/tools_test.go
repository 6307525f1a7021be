package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTool_RejectsDisallowedCommand(t *testing.T) {
	tool := NewCommandTool(nil, t.TempDir(), 0)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "rm -rf /"})
	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestCommandTool_AllowsListedCommand(t *testing.T) {
	tool := NewCommandTool([]string{"echo"}, t.TempDir(), 0)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo hello"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Content, "hello")
}

func TestFileWriterTool_WritesWithinRoot(t *testing.T) {
	root := t.TempDir()
	tool := NewFileWriterTool(root)
	result, err := tool.Execute(context.Background(), map[string]any{"path": "notes/a.txt", "content": "hi"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	data, err := os.ReadFile(filepath.Join(root, "notes/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestFileWriterTool_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	tool := NewFileWriterTool(root)
	_, err := tool.Execute(context.Background(), map[string]any{"path": "../../etc/passwd", "content": "x"})
	assert.Error(t, err)
}

func TestSearchReplaceTool_RequiresUniqueMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo foo"), 0o644))

	tool := NewSearchReplaceTool()
	_, err := tool.Execute(context.Background(), map[string]any{"path": path, "old_string": "foo", "new_string": "bar"})
	assert.Error(t, err)
}

func TestSearchReplaceTool_ReplacesUniqueMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	tool := NewSearchReplaceTool()
	result, err := tool.Execute(context.Background(), map[string]any{"path": path, "old_string": "world", "new_string": "there"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(data))
}

func TestCalendarTool_RecordsEntriesPerAgent(t *testing.T) {
	tool := NewCalendarTool()
	_, err := tool.Execute(context.Background(), map[string]any{"agent": "Oscar", "when": "tomorrow", "title": "standup"})
	require.NoError(t, err)

	entries := tool.EntriesFor("Oscar")
	require.Len(t, entries, 1)
	assert.Equal(t, "standup", entries[0].Title)
	assert.Equal(t, []string{"Oscar"}, tool.AgentNames())
}

func TestWordProcessorTool_WritesDocx(t *testing.T) {
	dir := t.TempDir()
	tool := NewWordProcessorTool(dir)
	result, err := tool.Execute(context.Background(), map[string]any{
		"title": "Resume", "content": "Experienced engineer.", "author": "Lisa",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = os.Stat(filepath.Join(dir, "Document", "Resume.docx"))
	assert.NoError(t, err)
}

func TestToolSet_GetAndClaims(t *testing.T) {
	set := NewSet(NewCommandTool(nil, ".", 0), NewCalendarTool())
	cal, ok := set.Get("calendar")
	assert.True(t, ok)
	assert.True(t, cal.Claims("SCHEDULE"))
	assert.False(t, cal.Claims("WRITE_DOCUMENT"))
	_, ok = set.Get("missing")
	assert.False(t, ok)
}
