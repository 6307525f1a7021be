package databases

import "fmt"

// Kind selects which Provider implementation a DatabaseConfig builds.
type Kind string

const (
	KindChromem Kind = "chromem"
	KindQdrant  Kind = "qdrant"
)

// Config is the union of provider-specific settings selected by Type,
// matching config.DatabaseConfig's shape one level down.
type Config struct {
	Type    Kind           `yaml:"type"`
	Chromem *ChromemConfig `yaml:"chromem,omitempty"`
	Qdrant  *QdrantConfig  `yaml:"qdrant,omitempty"`
}

// New builds the Provider selected by cfg.Type.
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", KindChromem:
		c := ChromemConfig{}
		if cfg.Chromem != nil {
			c = *cfg.Chromem
		}
		return NewChromemProvider(c)
	case KindQdrant:
		c := QdrantConfig{}
		if cfg.Qdrant != nil {
			c = *cfg.Qdrant
		}
		return NewQdrantProvider(c)
	default:
		return nil, fmt.Errorf("databases: unknown provider type %q", cfg.Type)
	}
}
