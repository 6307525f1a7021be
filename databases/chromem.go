package databases

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemConfig configures the embedded chromem-go provider. It requires no
// external services and is the engine's default semantic-memory backend.
type ChromemConfig struct {
	// PersistPath enables file persistence (vectors.gob under that
	// directory; vectors.gob.gz, gzip-compressed, when Compress is set).
	// Empty means in-memory only, lost when the process exits.
	PersistPath string `yaml:"persist_path,omitempty"`
	Compress    bool   `yaml:"compress,omitempty"`
}

// ChromemProvider implements Provider on top of an embedded chromem-go
// database: pure Go, single-process, cosine similarity, optional
// persistence to disk.
type ChromemProvider struct {
	db       *chromem.DB
	path     string
	compress bool

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewChromemProvider opens (or creates) a chromem-go database at cfg.PersistPath,
// or an in-memory one if cfg.PersistPath is empty.
func NewChromemProvider(cfg ChromemConfig) (*ChromemProvider, error) {
	var db *chromem.DB
	var err error

	if cfg.PersistPath != "" {
		if err := os.MkdirAll(cfg.PersistPath, 0o755); err != nil {
			return nil, fmt.Errorf("databases: creating chromem persist dir: %w", err)
		}
		dbFile := cfg.PersistPath + "/vectors.gob"
		if cfg.Compress {
			dbFile += ".gz"
		}
		if _, statErr := os.Stat(dbFile); statErr == nil {
			db, err = chromem.NewPersistentDB(dbFile, cfg.Compress)
			if err != nil {
				return nil, fmt.Errorf("databases: loading chromem db: %w", err)
			}
		} else {
			db = chromem.NewDB()
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemProvider{
		db:          db,
		path:        cfg.PersistPath,
		compress:    cfg.Compress,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (p *ChromemProvider) Name() string { return "chromem" }

// identityEmbed never runs: every call here supplies a pre-computed vector.
func identityEmbed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("databases: chromem embedding func invoked on pre-computed vector path")
}

func (p *ChromemProvider) collection(name string) (*chromem.Collection, error) {
	p.mu.RLock()
	if col, ok := p.collections[name]; ok {
		p.mu.RUnlock()
		return col, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if col, ok := p.collections[name]; ok {
		return col, nil
	}
	col, err := p.db.GetOrCreateCollection(name, nil, identityEmbed)
	if err != nil {
		return nil, fmt.Errorf("databases: chromem collection %q: %w", name, err)
	}
	p.collections[name] = col
	return col, nil
}

func (p *ChromemProvider) CreateCollection(ctx context.Context, collection string, vectorDimension int) error {
	_, err := p.collection(collection)
	return err
}

func (p *ChromemProvider) Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]any) error {
	col, err := p.collection(collection)
	if err != nil {
		return err
	}

	strMeta := make(map[string]string, len(metadata))
	content := ""
	for k, v := range metadata {
		if k == "content" {
			if s, ok := v.(string); ok {
				content = s
				continue
			}
		}
		strMeta[k] = fmt.Sprint(v)
	}

	doc := chromem.Document{ID: id, Content: content, Metadata: strMeta, Embedding: vector}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("databases: chromem upsert: %w", err)
	}
	return p.persist()
}

func (p *ChromemProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error) {
	col, err := p.collection(collection)
	if err != nil {
		return nil, err
	}
	if n := col.Count(); n < topK {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("databases: chromem search: %w", err)
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		out = append(out, Result{ID: r.ID, Score: r.Similarity, Content: r.Content, Metadata: meta})
	}
	return out, nil
}

func (p *ChromemProvider) Delete(ctx context.Context, collection, id string) error {
	col, err := p.collection(collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("databases: chromem delete: %w", err)
	}
	return p.persist()
}

func (p *ChromemProvider) persist() error {
	if p.path == "" {
		return nil
	}
	dbPath := p.path + "/vectors.gob"
	if p.compress {
		dbPath += ".gz"
	}
	//nolint:staticcheck // Export is deprecated in favor of per-collection persistence, kept for whole-db snapshotting.
	return p.db.Export(dbPath, p.compress, "")
}

func (p *ChromemProvider) Close() error { return p.persist() }

var _ Provider = (*ChromemProvider)(nil)
