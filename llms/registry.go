package llms

import (
	"fmt"

	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/registry"
)

// Registry holds named LLMProvider bindings built from config.
type Registry struct {
	*registry.Registry[LLMProvider]
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{Registry: registry.New[LLMProvider]()}
}

// CreateProvider builds an LLMProvider from an LLMConfig, dispatching on
// api_type.
func CreateProvider(cfg config.LLMConfig) (LLMProvider, error) {
	retry := NewRetryPolicy(cfg.MaxAttempts, cfg.WaitingTime, cfg.ExponentialBackoffFactor)

	switch cfg.APIType {
	case "openai", "openai-compatible":
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, retry, cfg.Timeout), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, retry, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("llms: unsupported api_type %q", cfg.APIType)
	}
}

// BuildRegistry constructs providers for every named LLM binding in cfg and
// registers them under their config names.
func BuildRegistry(cfgs map[string]config.LLMConfig) (*Registry, error) {
	reg := NewRegistry()
	for name, llmCfg := range cfgs {
		provider, err := CreateProvider(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("llms: building provider %q: %w", name, err)
		}
		if err := reg.Register(name, provider); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
