package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/llms"
)

type stubLLM struct{}

func (stubLLM) Name() string { return "stub" }
func (stubLLM) Complete(ctx context.Context, req llms.CompletionRequest) (*llms.CompletionResponse, error) {
	return &llms.CompletionResponse{Content: `{"action":{"type":"DONE","content":""},"cognitive_state":{}}`}, nil
}

func newAgent(name string) *agent.Agent {
	return agent.New(config.PersonaConfig{Name: name}, stubLLM{}, config.LLMConfig{}, nil, nil)
}

func TestRuntime_RegisterAgent_DuplicateNameRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterAgent(newAgent("Oscar")))
	assert.Error(t, r.RegisterAgent(newAgent("Oscar")))

	a, ok := r.Agent("Oscar")
	require.True(t, ok)
	assert.Equal(t, "Oscar", a.Name())
}

func TestRuntime_StartDefault_SecondStartFails(t *testing.T) {
	r := New()
	sim1, err := r.NewSimulation("sim-1")
	require.NoError(t, err)
	require.NoError(t, r.StartDefault(sim1, "", false))

	sim2, err := r.NewSimulation("sim-2")
	require.NoError(t, err)
	assert.Error(t, r.StartDefault(sim2, "", false), "a second simulation must not start in the same slot while one is active")
}

func TestRuntime_StopThenRestartSameSlotSucceeds(t *testing.T) {
	r := New()
	sim1, err := r.NewSimulation("sim-1")
	require.NoError(t, err)
	require.NoError(t, r.StartDefault(sim1, "", false))
	require.NoError(t, r.StopDefault())

	sim2, err := r.NewSimulation("sim-2")
	require.NoError(t, err)
	require.NoError(t, r.StartDefault(sim2, "", false))

	cur, ok := r.CurrentDefault()
	require.True(t, ok)
	assert.Equal(t, "sim-2", cur.ID())
}

func TestRuntime_NamedSlotsAreIndependent(t *testing.T) {
	r := New()
	simA, err := r.NewSimulation("a")
	require.NoError(t, err)
	simB, err := r.NewSimulation("b")
	require.NoError(t, err)

	require.NoError(t, r.Start("slotA", simA, "", false))
	require.NoError(t, r.Start("slotB", simB, "", false))

	curA, ok := r.Current("slotA")
	require.True(t, ok)
	assert.Equal(t, "a", curA.ID())

	curB, ok := r.Current("slotB")
	require.True(t, ok)
	assert.Equal(t, "b", curB.ID())
}

func TestRuntime_StopWithoutStartFails(t *testing.T) {
	r := New()
	assert.Error(t, r.StopDefault())
}
