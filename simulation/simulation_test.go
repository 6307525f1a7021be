package simulation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/llms"
)

// stubLLM returns canned completion contents in order, repeating the last
// one once exhausted. A counter field lets a test make each call distinct
// so the agent act loop's internal loop-detector never interferes.
type stubLLM struct {
	responses []string
	calls     int
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(ctx context.Context, req llms.CompletionRequest) (*llms.CompletionResponse, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return &llms.CompletionResponse{Content: s.responses[idx]}, nil
}

func newOscar() *agent.Agent {
	llm := &stubLLM{responses: []string{
		`{"action": {"type": "DONE", "content": ""}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`,
	}}
	return agent.New(config.PersonaConfig{Name: "Oscar", Occupation: "Architect"}, llm, config.LLMConfig{Model: "test-model"}, nil, nil)
}

func TestSimulation_BeginTwiceFails(t *testing.T) {
	s := New("")
	require.NoError(t, s.Begin("", false))
	assert.Error(t, s.Begin("", false))
}

func TestSimulation_EndWithoutBeginFails(t *testing.T) {
	s := New("")
	assert.Error(t, s.End())
}

func TestSimulation_AddAgent_DuplicateNameRejected(t *testing.T) {
	s := New("")
	require.NoError(t, s.Begin("", false))

	require.NoError(t, s.AddAgent(newOscar()))
	assert.Error(t, s.AddAgent(newOscar()))
}

func TestSimulation_AddAgent_BeforeBeginFails(t *testing.T) {
	s := New("")
	assert.Error(t, s.AddAgent(newOscar()))
}

func TestSimulation_Do_BypassesCachingWhenNotStarted(t *testing.T) {
	s := New("")
	calls := 0
	out, err := s.Do("Oscar", "Listen", "hi", func() (any, error) {
		calls++
		return "ran", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ran", out)
	assert.Equal(t, 1, calls)
}

func TestSimulation_Do_NestedCallRunsDirectly(t *testing.T) {
	s := New("")
	require.NoError(t, s.Begin("", false))

	outer := 0
	inner := 0
	_, err := s.Do("Oscar", "Outer", nil, func() (any, error) {
		outer++
		_, ierr := s.Do("Oscar", "Inner", nil, func() (any, error) {
			inner++
			return nil, nil
		})
		return nil, ierr
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outer)
	assert.Equal(t, 1, inner)
}

func TestSimulation_Checkpoint_PersistsAndReplays(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "trace.json")

	s := New("sim-1")
	require.NoError(t, s.Begin(cachePath, false))

	oscar := newOscar()
	require.NoError(t, s.AddAgent(oscar))

	calls := 0
	_, err := s.Do(oscar.Name(), "Define", "age=30", func() (any, error) {
		calls++
		require.NoError(t, oscar.Define("age", 30, ""))
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, s.Checkpoint())
	require.NoError(t, s.End())

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Replay: a fresh Simulation + fresh Agent, same cache file, same call.
	// The cached node must resolve without invoking fn a second time, and
	// state must be restored onto the new Agent via decodeState.
	s2 := New("sim-1")
	require.NoError(t, s2.Begin(cachePath, false))

	oscar2 := agent.New(config.PersonaConfig{Name: "Oscar"}, &stubLLM{}, config.LLMConfig{}, nil, nil)
	require.NoError(t, s2.AddAgent(oscar2))

	replayCalls := 0
	_, err = s2.Do(oscar2.Name(), "Define", "age=30", func() (any, error) {
		replayCalls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, replayCalls, "cached call must not re-invoke fn")
	assert.Equal(t, 30, oscar2.Persona().Age, "replay must restore decoded state onto the live agent")
}

func TestSimulation_Checkpoint_DivergedCallDropsCachedSuffix(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "trace.json")

	s := New("sim-1")
	require.NoError(t, s.Begin(cachePath, false))
	oscar := newOscar()
	require.NoError(t, s.AddAgent(oscar))

	_, err := s.Do(oscar.Name(), "Define", "age=30", func() (any, error) {
		return nil, oscar.Define("age", 30, "")
	})
	require.NoError(t, err)
	require.NoError(t, s.Checkpoint())
	require.NoError(t, s.End())

	s2 := New("sim-1")
	require.NoError(t, s2.Begin(cachePath, false))
	oscar2 := agent.New(config.PersonaConfig{Name: "Oscar"}, &stubLLM{}, config.LLMConfig{}, nil, nil)
	require.NoError(t, s2.AddAgent(oscar2))

	calls := 0
	_, err = s2.Do(oscar2.Name(), "Define", "age=31", func() (any, error) {
		calls++
		return nil, oscar2.Define("age", 31, "")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a diverged event hash must re-invoke fn instead of replaying")
	assert.Equal(t, 31, oscar2.Persona().Age)
}

func TestSimulation_AutoCheckpoint_FlushesAfterEachCall(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "trace.json")

	s := New("")
	require.NoError(t, s.Begin(cachePath, true))
	oscar := newOscar()
	require.NoError(t, s.AddAgent(oscar))

	_, err := s.Do(oscar.Name(), "Define", "age=30", func() (any, error) {
		return nil, oscar.Define("age", 30, "")
	})
	require.NoError(t, err)

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "auto-checkpoint must flush without an explicit Checkpoint call")
}
