package memory

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/kadirpekel/troupe/databases"
	"github.com/kadirpekel/troupe/embedder"
)

// DocumentPrefixLength bounds whole-document lookups so a single CONSULT
// action cannot blow up the prompt.
const DocumentPrefixLength = 10_000

// defaultChunkSize and defaultChunkOverlap describe the fixed-size rune
// window splitter used to turn a document's text into embeddable chunks.
// This is the one piece of semantic memory built on the standard library
// rather than a pack dependency — none of the example repos ship a text
// chunker, so there is nothing in the corpus to ground an import on; see
// DESIGN.md.
const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// Snippet is one scored match from RetrieveRelevant.
type Snippet struct {
	SourceName string
	Score      float32
	Content    string
}

// SemanticMemory is a vector-indexed store over ingested documents and web
// pages: similarity retrieval plus whole-document lookup by name.
type SemanticMemory struct {
	provider   databases.Provider
	embedder   embedder.Embedder
	collection string

	mu        sync.RWMutex
	ingested  map[string]bool   // distinct paths/URLs already ingested
	documents map[string]string // name -> full text, for whole-document lookup
}

// NewSemanticMemory builds a SemanticMemory backed by provider for vector
// storage and emb for embeddings, using collection as the vector
// namespace (typically the owning agent's name).
func NewSemanticMemory(provider databases.Provider, emb embedder.Embedder, collection string) *SemanticMemory {
	return &SemanticMemory{
		provider:   provider,
		embedder:   emb,
		collection: collection,
		ingested:   make(map[string]bool),
		documents:  make(map[string]string),
	}
}

// AddDocumentsPath ingests every regular file under path (or path itself,
// if it is a file) as a named document. Idempotent: a path already
// ingested is skipped.
func (s *SemanticMemory) AddDocumentsPath(ctx context.Context, path string) error {
	s.mu.Lock()
	if s.ingested[path] {
		s.mu.Unlock()
		return nil
	}
	s.ingested[path] = true
	s.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("memory: stat %q: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("memory: walking %q: %w", path, err)
		}
	} else {
		files = []string{path}
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("memory: reading %q: %w", f, err)
		}
		if err := s.ingestDocument(ctx, filepath.Base(f), sanitize(string(data))); err != nil {
			return err
		}
	}
	return nil
}

// AddWebURLs fetches each URL, strips HTML markup to plain text, and
// ingests it as a named document (name = URL). Idempotent per exact URL
// string.
func (s *SemanticMemory) AddWebURLs(ctx context.Context, urls []string) error {
	for _, u := range urls {
		s.mu.Lock()
		already := s.ingested[u]
		s.ingested[u] = true
		s.mu.Unlock()
		if already {
			continue
		}

		text, err := fetchAndStripHTML(ctx, u)
		if err != nil {
			return fmt.Errorf("memory: fetching %q: %w", u, err)
		}
		if err := s.ingestDocument(ctx, u, sanitize(text)); err != nil {
			return err
		}
	}
	return nil
}

func fetchAndStripHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String(), nil
}

func (s *SemanticMemory) ingestDocument(ctx context.Context, name, text string) error {
	s.mu.Lock()
	s.documents[name] = text
	s.mu.Unlock()

	chunks := chunkText(text, defaultChunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("memory: embedding %q: %w", name, err)
	}

	if err := s.provider.CreateCollection(ctx, s.collection, s.embedder.Dimension()); err != nil {
		return fmt.Errorf("memory: creating collection: %w", err)
	}

	for i, chunk := range chunks {
		id := fmt.Sprintf("%s#%d", name, i)
		meta := map[string]any{"source": name, "chunk": i, "content": chunk}
		if err := s.provider.Upsert(ctx, s.collection, id, vectors[i], meta); err != nil {
			return fmt.Errorf("memory: upserting chunk %d of %q: %w", i, name, err)
		}
	}
	return nil
}

// chunkText splits text into overlapping rune windows of size chunkSize.
func chunkText(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	step := chunkSize - overlap
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// RetrieveRelevant embeds query and returns the topK most similar chunks
// across all ingested documents. The Open Question in spec.md §9 about
// retrieve_relevant ignoring its query argument on one code path is
// resolved here by always embedding and passing the caller-supplied query.
func (s *SemanticMemory) RetrieveRelevant(ctx context.Context, query string, topK int) ([]Snippet, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("memory: embedding query: %w", err)
	}

	results, err := s.provider.Search(ctx, s.collection, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("memory: searching: %w", err)
	}

	snippets := make([]Snippet, 0, len(results))
	for _, r := range results {
		name, _ := r.Metadata["source"].(string)
		snippets = append(snippets, Snippet{SourceName: name, Score: r.Score, Content: r.Content})
	}
	return snippets, nil
}

// RetrieveDocumentContentByName returns a bounded prefix of the named
// document's full text, or false if no such document was ingested.
func (s *SemanticMemory) RetrieveDocumentContentByName(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[name]
	if !ok {
		return "", false
	}
	if len(text) > DocumentPrefixLength {
		text = text[:DocumentPrefixLength]
	}
	return text, true
}

// ListDocumentsNames returns every ingested document name, sorted for
// deterministic prompt rendering.
func (s *SemanticMemory) ListDocumentsNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.documents))
	for name := range s.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
