// Package config loads and validates the YAML configuration that drives a
// simulation run: LLM providers, vector databases, embedders, agent
// personas, and simulation-wide settings such as response caching.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of a simulation definition file.
type Config struct {
	Version     string `yaml:"version"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	LLMs       map[string]LLMConfig       `yaml:"llm"`
	Databases  map[string]DatabaseConfig  `yaml:"databases,omitempty"`
	Embedders  map[string]EmbedderConfig  `yaml:"embedders,omitempty"`
	Agents     map[string]AgentConfig     `yaml:"agents,omitempty"`
	Simulation SimulationConfig           `yaml:"simulation,omitempty"`
	Logging    LoggingConfig              `yaml:"logging,omitempty"`
}

// LLMConfig configures one named LLM provider binding. Field names mirror
// spec.md's external-interface key names exactly.
type LLMConfig struct {
	APIType                 string  `yaml:"api_type"`
	Model                   string  `yaml:"model"`
	EmbeddingModel          string  `yaml:"embedding_model,omitempty"`
	APIKey                  string  `yaml:"api_key,omitempty"`
	BaseURL                 string  `yaml:"base_url,omitempty"`
	MaxTokens               int     `yaml:"max_tokens,omitempty"`
	Temperature             float64 `yaml:"temperature,omitempty"`
	TopP                    float64 `yaml:"top_p,omitempty"`
	FreqPenalty             float64 `yaml:"freq_penalty,omitempty"`
	PresencePenalty         float64 `yaml:"presence_penalty,omitempty"`
	Timeout                 int     `yaml:"timeout,omitempty"`
	MaxAttempts             int     `yaml:"max_attempts,omitempty"`
	WaitingTime             float64 `yaml:"waiting_time,omitempty"`
	ExponentialBackoffFactor float64 `yaml:"exponential_backoff_factor,omitempty"`
	CacheAPICalls           bool    `yaml:"cache_api_calls,omitempty"`
	CacheFileName           string  `yaml:"cache_file_name,omitempty"`
	MaxContentDisplayLength int     `yaml:"max_content_display_length,omitempty"`
}

// SetDefaults fills in zero-valued fields with the engine's defaults,
// mirroring the teacher's cascading SetDefaults convention.
func (c *LLMConfig) SetDefaults() {
	if c.APIType == "" {
		c.APIType = "openai"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Temperature == 0 {
		c.Temperature = 1.0
	}
	if c.TopP == 0 {
		c.TopP = 1.0
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.WaitingTime == 0 {
		c.WaitingTime = 1
	}
	if c.ExponentialBackoffFactor == 0 {
		c.ExponentialBackoffFactor = 5
	}
	if c.CacheFileName == "" {
		c.CacheFileName = "llm_cache.json"
	}
	if c.MaxContentDisplayLength == 0 {
		c.MaxContentDisplayLength = 1024
	}
}

// Validate checks required fields after defaults have been applied.
func (c *LLMConfig) Validate() error {
	switch c.APIType {
	case "openai", "anthropic", "openai-compatible":
	default:
		return NewError("config", "LLMConfig.Validate", fmt.Sprintf("unsupported api_type %q", c.APIType), nil)
	}
	if c.Model == "" {
		return NewError("config", "LLMConfig.Validate", "model is required", nil)
	}
	return nil
}

// TimeoutDuration returns the configured request timeout as a time.Duration.
func (c *LLMConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DatabaseConfig configures one named vector database binding.
type DatabaseConfig struct {
	Type string `yaml:"type"` // "chromem" | "qdrant"

	Chromem *ChromemConfig `yaml:"chromem,omitempty"`
	Qdrant  *QdrantConfig  `yaml:"qdrant,omitempty"`
}

// ChromemConfig configures the embedded chromem-go backend.
type ChromemConfig struct {
	Path       string `yaml:"path,omitempty"`
	Collection string `yaml:"collection,omitempty"`
}

// QdrantConfig configures a remote Qdrant backend.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	UseTLS     bool   `yaml:"use_tls,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	Dimension  int    `yaml:"dimension,omitempty"`
}

// SetDefaults applies zero-value defaults for a database binding.
func (c *DatabaseConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "chromem"
	}
	if c.Type == "chromem" {
		if c.Chromem == nil {
			c.Chromem = &ChromemConfig{}
		}
		if c.Chromem.Collection == "" {
			c.Chromem.Collection = "semantic_memory"
		}
	}
	if c.Type == "qdrant" && c.Qdrant != nil {
		if c.Qdrant.Port == 0 {
			c.Qdrant.Port = 6334
		}
		if c.Qdrant.Collection == "" {
			c.Qdrant.Collection = "semantic_memory"
		}
	}
}

// Validate checks required fields for the selected database type.
func (c *DatabaseConfig) Validate() error {
	switch c.Type {
	case "chromem":
		return nil
	case "qdrant":
		if c.Qdrant == nil || c.Qdrant.Host == "" {
			return NewError("config", "DatabaseConfig.Validate", "qdrant.host is required", nil)
		}
		return nil
	default:
		return NewError("config", "DatabaseConfig.Validate", fmt.Sprintf("unknown database type %q", c.Type), nil)
	}
}

// EmbedderConfig configures one named embedding provider binding.
type EmbedderConfig struct {
	Type    string `yaml:"type"` // "openai" | "ollama"
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// SetDefaults applies zero-value defaults to an embedder binding.
func (c *EmbedderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
}

// PersonaConfig is the agent persona specification described in spec.md §3,
// rendered into the agent's system prompt.
type PersonaConfig struct {
	Name                      string       `yaml:"name"`
	Age                       int          `yaml:"age,omitempty"`
	Nationality               string       `yaml:"nationality,omitempty"`
	Occupation                string       `yaml:"occupation,omitempty"`
	Routines                  []string     `yaml:"routines,omitempty"`
	Traits                    []string     `yaml:"traits,omitempty"`
	Interests                 []string     `yaml:"interests,omitempty"`
	Skills                    []string     `yaml:"skills,omitempty"`
	Relationships             []Relationship `yaml:"relationships,omitempty"`
	CurrentDatetime           string       `yaml:"current_datetime,omitempty"`
	CurrentLocation           string       `yaml:"current_location,omitempty"`
	CurrentContext            []string     `yaml:"current_context,omitempty"`
	CurrentAttention          string       `yaml:"current_attention,omitempty"`
	CurrentGoals              []string     `yaml:"current_goals,omitempty"`
	CurrentEmotions           string       `yaml:"current_emotions,omitempty"`
	CurrentlyAccessibleAgents []string     `yaml:"currently_accessible_agents,omitempty"`
}

// Relationship describes one edge of an agent's social graph entry.
type Relationship struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// AgentConfig binds a persona to an LLM provider, a memory backend, and a
// set of faculties.
type AgentConfig struct {
	Persona       PersonaConfig `yaml:"persona"`
	LLM           string        `yaml:"llm"`
	Database      string        `yaml:"database,omitempty"`
	Embedder      string        `yaml:"embedder,omitempty"`
	Faculties     []string      `yaml:"faculties,omitempty"`
	EpisodicWindow EpisodicWindowConfig `yaml:"episodic_window,omitempty"`
}

// EpisodicWindowConfig configures the prefix+marker+tail windowing policy.
type EpisodicWindowConfig struct {
	PrefixSize int `yaml:"prefix_size,omitempty"`
	TailSize   int `yaml:"tail_size,omitempty"`
}

// SetDefaults applies zero-value defaults to an agent binding.
func (c *AgentConfig) SetDefaults() {
	if c.EpisodicWindow.PrefixSize == 0 {
		c.EpisodicWindow.PrefixSize = 5
	}
	if c.EpisodicWindow.TailSize == 0 {
		c.EpisodicWindow.TailSize = 15
	}
}

// SimulationConfig holds engine-wide, non-agent-specific settings.
type SimulationConfig struct {
	CacheAPICalls bool   `yaml:"cache_api_calls,omitempty"`
	CacheFileName string `yaml:"cache_file_name,omitempty"`
	TraceFileName string `yaml:"trace_file_name,omitempty"`
}

// SetDefaults applies zero-value defaults to simulation settings.
func (c *SimulationConfig) SetDefaults() {
	if c.CacheFileName == "" {
		c.CacheFileName = "simulation_cache.json"
	}
	if c.TraceFileName == "" {
		c.TraceFileName = "simulation_trace.json"
	}
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"` // debug | info | warn | error
	Format string `yaml:"format,omitempty"` // text | json
}

// SetDefaults applies zero-value defaults to logging settings.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// SetDefaults cascades defaults through every sub-config.
func (c *Config) SetDefaults() {
	for name, llm := range c.LLMs {
		llm.SetDefaults()
		c.LLMs[name] = llm
	}
	for name, db := range c.Databases {
		db.SetDefaults()
		c.Databases[name] = db
	}
	for name, emb := range c.Embedders {
		emb.SetDefaults()
		c.Embedders[name] = emb
	}
	for name, ag := range c.Agents {
		ag.SetDefaults()
		c.Agents[name] = ag
	}
	c.Simulation.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if len(c.LLMs) == 0 {
		return NewError("config", "Config.Validate", "at least one llm provider is required", nil)
	}
	for name, llm := range c.LLMs {
		if err := llm.Validate(); err != nil {
			return NewError("config", "Config.Validate", fmt.Sprintf("llm %q invalid", name), err)
		}
	}
	for name, db := range c.Databases {
		if err := db.Validate(); err != nil {
			return NewError("config", "Config.Validate", fmt.Sprintf("database %q invalid", name), err)
		}
	}
	for name, ag := range c.Agents {
		if ag.LLM == "" {
			return NewError("config", "Config.Validate", fmt.Sprintf("agent %q: llm binding is required", name), nil)
		}
		if _, ok := c.LLMs[ag.LLM]; !ok {
			return NewError("config", "Config.Validate", fmt.Sprintf("agent %q: llm %q not defined", name, ag.LLM), nil)
		}
	}
	return nil
}

// Load reads, expands, parses, defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError("config", "Load", "reading config file", err)
	}

	expanded := expandEnvVars(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, NewError("config", "Load", "parsing yaml", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
