package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/llms"
	"github.com/kadirpekel/troupe/memory"
)

// stubLLM returns canned completion contents in order, repeating the last
// one once exhausted.
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

func newTestAgent(t *testing.T, llm llms.LLMProvider) *Agent {
	t.Helper()
	persona := config.PersonaConfig{Name: "Oscar", Occupation: "Architect"}
	return New(persona, llm, config.LLMConfig{Model: "test-model"}, nil, nil)
}

func TestAgent_ListenAndAct_StopsOnDone(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"action": {"type": "DONE", "content": ""}, "cognitive_state": {"goals": ["rest"], "attention": "none", "emotions": "calm"}}`,
	}}
	a := newTestAgent(t, llm)

	actions, err := a.ListenAndAct(context.Background(), "How are you doing?")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, memory.ActionDone, actions[0].Type)

	pending := a.DrainPendingActions()
	assert.Len(t, pending, 1)
	assert.Empty(t, a.DrainPendingActions()) // drained buffer is empty on the second call
}

func TestAgent_Act_LoopDetectorStopsAtThreeIdentical(t *testing.T) {
	// Never emits DONE; loop detector must cut it off at 3 repeats.
	llm := &stubLLM{responses: []string{
		`{"action": {"type": "THINK", "content": "hmm"}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`,
	}}
	a := newTestAgent(t, llm)

	actions, err := a.Act(context.Background(), true, 0, true)
	require.NoError(t, err)
	assert.Len(t, actions, 3)
	assert.LessOrEqual(t, len(actions), MaxActionsBeforeDone)
}

func TestAgent_Act_HardBoundWhenNeverDone(t *testing.T) {
	// Two distinct actions alternate so the loop detector never fires and
	// the hard MaxActionsBeforeDone bound takes over.
	responses := make([]string, 0, MaxActionsBeforeDone+5)
	for i := 0; i < MaxActionsBeforeDone+5; i++ {
		responses = append(responses, `{"action": {"type": "THINK", "content": "step"}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`)
	}
	// Every odd response adds a Target field, so no three consecutive
	// actions are identical.
	for i := 1; i < len(responses); i += 2 {
		responses[i] = `{"action": {"type": "THINK", "content": "step", "target": "x"}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`
	}
	llm := &stubLLM{responses: responses}
	a := newTestAgent(t, llm)

	actions, err := a.Act(context.Background(), true, 0, true)
	require.NoError(t, err)
	assert.Len(t, actions, MaxActionsBeforeDone)
}

func TestAgent_Act_RetriesOnParseFailure(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`not json at all`,
		`{"cognitive_state": {}}`, // missing action
		`{"action": {"type": "DONE", "content": ""}, "cognitive_state": {}}`,
	}}
	a := newTestAgent(t, llm)

	actions, err := a.Act(context.Background(), true, 0, true)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, memory.ActionDone, actions[0].Type)
}

func TestAgent_Act_ExhaustsParseRetries(t *testing.T) {
	llm := &stubLLM{responses: []string{"garbage"}}
	a := newTestAgent(t, llm)

	_, err := a.Act(context.Background(), true, 0, true)
	assert.Error(t, err)
}

func TestAgent_Define(t *testing.T) {
	a := newTestAgent(t, &stubLLM{responses: []string{`{"action":{"type":"DONE","content":""},"cognitive_state":{}}`}})

	require.NoError(t, a.Define("age", 30, ""))
	require.NoError(t, a.Define("traits", "curious", ""))
	p := a.Persona()
	assert.Equal(t, 30, p.Age)
	assert.Contains(t, p.Traits, "curious")
}

func TestAgent_DefineRelationships_AndRelatedTo(t *testing.T) {
	a := newTestAgent(t, &stubLLM{})
	require.NoError(t, a.DefineRelationships([]config.Relationship{{Name: "Lisa", Description: "colleague"}}))

	desc, ok := a.RelatedTo("Lisa")
	require.True(t, ok)
	assert.Equal(t, "colleague", desc)

	require.NoError(t, a.ClearRelationships())
	_, ok = a.RelatedTo("Lisa")
	assert.False(t, ok)
}

func TestAgent_Accessibility(t *testing.T) {
	a := newTestAgent(t, &stubLLM{})
	b := New(config.PersonaConfig{Name: "Lisa"}, &stubLLM{}, config.LLMConfig{}, nil, nil)

	require.NoError(t, a.MakeAgentAccessible(b, "met at work"))
	assert.True(t, a.IsAccessible("Lisa"))
	assert.Equal(t, []string{"Lisa"}, a.AccessibleAgentNames())

	require.NoError(t, a.MakeAgentInaccessible("Lisa"))
	assert.False(t, a.IsAccessible("Lisa"))
}

func TestAgent_EncodeDecodeStateRoundTrip(t *testing.T) {
	a := newTestAgent(t, &stubLLM{})
	require.NoError(t, a.Define("age", 42, ""))
	require.NoError(t, a.Listen("hello", "Lisa"))

	state, err := a.EncodeCompleteState()
	require.NoError(t, err)

	b := New(config.PersonaConfig{Name: "placeholder"}, &stubLLM{}, config.LLMConfig{}, nil, nil)
	require.NoError(t, b.DecodeCompleteState(state))

	assert.Equal(t, "Oscar", b.Name())
	assert.Equal(t, 42, b.Persona().Age)
	assert.Equal(t, a.EpisodicMemory().Count(), b.EpisodicMemory().Count())
}

func TestParseResponse_ExtractsJSONFromProse(t *testing.T) {
	content := "Sure, here you go:\n```json\n{\"action\": {\"type\": \"TALK\", \"content\": \"hi\", \"target\": \"Lisa\"}, \"cognitive_state\": {\"goals\": \"rest\"}}\n```\nHope that helps."
	action, cog, err := parseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, memory.ActionTalk, action.Type)
	assert.Equal(t, "Lisa", action.Target)
	assert.Equal(t, []string{"rest"}, cog.Goals)
}

func TestParseResponse_MissingActionFails(t *testing.T) {
	_, _, err := parseResponse(`{"cognitive_state": {}}`)
	assert.Error(t, err)
}
