package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/troupe/databases"
)

// fakeEmbedder returns a deterministic low-dimensional vector derived from
// text length, enough to exercise chunking/search plumbing without a real
// embedding model.
type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Model() string  { return "fake" }
func (f *fakeEmbedder) Close() error   { return nil }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(text)%7) + float32(i)*0.01
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := f.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

func newTestSemanticMemory(t *testing.T) *SemanticMemory {
	t.Helper()
	provider, err := databases.NewChromemProvider(databases.ChromemConfig{})
	require.NoError(t, err)
	return NewSemanticMemory(provider, &fakeEmbedder{dim: 8}, "test-agent")
}

func TestSemanticMemory_AddDocumentsPath_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("the quick brown fox jumps over the lazy dog"), 0o644))

	sm := newTestSemanticMemory(t)
	ctx := context.Background()

	require.NoError(t, sm.AddDocumentsPath(ctx, path))
	require.NoError(t, sm.AddDocumentsPath(ctx, path)) // second call is a no-op

	assert.Equal(t, []string{"notes.txt"}, sm.ListDocumentsNames())
}

func TestSemanticMemory_RetrieveDocumentContentByName_BoundedPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	big := make([]byte, DocumentPrefixLength+500)
	for i := range big {
		big[i] = 'a'
	}
	require.NoError(t, os.WriteFile(path, big, 0o644))

	sm := newTestSemanticMemory(t)
	require.NoError(t, sm.AddDocumentsPath(context.Background(), path))

	content, ok := sm.RetrieveDocumentContentByName("big.txt")
	require.True(t, ok)
	assert.Len(t, content, DocumentPrefixLength)
}

func TestSemanticMemory_RetrieveDocumentContentByName_Unknown(t *testing.T) {
	sm := newTestSemanticMemory(t)
	_, ok := sm.RetrieveDocumentContentByName("nope")
	assert.False(t, ok)
}

func TestSemanticMemory_RetrieveRelevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hector is a multi agent framework for llm orchestration"), 0o644))

	sm := newTestSemanticMemory(t)
	ctx := context.Background()
	require.NoError(t, sm.AddDocumentsPath(ctx, path))

	snippets, err := sm.RetrieveRelevant(ctx, "what is hector", 5)
	require.NoError(t, err)
	require.NotEmpty(t, snippets)
	assert.Equal(t, "notes.txt", snippets[0].SourceName)
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("abcdefghij", 4, 1)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "abcd", chunks[0])

	assert.Nil(t, chunkText("", 10, 2))
}
