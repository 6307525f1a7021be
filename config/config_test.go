package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaultsAndValidates(t *testing.T) {
	path := writeTempConfig(t, `
version: "1"
name: test-sim
llm:
  default:
    api_type: openai
    model: gpt-4o-mini
agents:
  alice:
    persona:
      name: Alice
    llm: default
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	llm := cfg.LLMs["default"]
	assert.Equal(t, 1024, llm.MaxTokens)
	assert.Equal(t, 5, llm.MaxAttempts)
	assert.Equal(t, "llm_cache.json", llm.CacheFileName)

	agent := cfg.Agents["alice"]
	assert.Equal(t, 5, agent.EpisodicWindow.PrefixSize)
	assert.Equal(t, 15, agent.EpisodicWindow.TailSize)
}

func TestLoad_RejectsMissingLLM(t *testing.T) {
	path := writeTempConfig(t, `
version: "1"
name: test-sim
llm: {}
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownAgentLLMBinding(t *testing.T) {
	path := writeTempConfig(t, `
version: "1"
name: test-sim
llm:
  default:
    model: gpt-4o-mini
agents:
  bob:
    persona:
      name: Bob
    llm: nonexistent
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SIM_API_KEY", "secret-key")

	path := writeTempConfig(t, `
version: "1"
name: test-sim
llm:
  default:
    model: gpt-4o-mini
    api_key: ${SIM_API_KEY}
    base_url: ${SIM_BASE_URL:-https://api.openai.com}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	llm := cfg.LLMs["default"]
	assert.Equal(t, "secret-key", llm.APIKey)
	assert.Equal(t, "https://api.openai.com", llm.BaseURL)
}
