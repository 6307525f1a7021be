package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/llms"
)

// scriptedLLM replies with one canned completion per call, keyed by the
// calling agent's name, so a test can script a distinct act for each
// agent in a single World.Step.
type scriptedLLM struct {
	byAgent map[string][]string
	calls   map[string]int
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{byAgent: map[string][]string{}, calls: map[string]int{}}
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(ctx context.Context, req llms.CompletionRequest) (*llms.CompletionResponse, error) {
	// The agent's name is threaded through as the request Model field by
	// the tests below (newScriptedAgent sets llmConfig.Model = name), so
	// the stub can key its canned script per agent without the LLM
	// interface needing to know about agents at all.
	name := req.Model
	responses := s.byAgent[name]
	idx := s.calls[name]
	if idx >= len(responses) {
		idx = len(responses) - 1
	}
	s.calls[name]++
	return &llms.CompletionResponse{Content: responses[idx]}, nil
}

func doneResponse() string {
	return `{"action": {"type": "DONE", "content": ""}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`
}

func talkResponse(target, content string) string {
	return `{"action": {"type": "TALK", "content": "` + content + `", "target": "` + target + `"}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`
}

func reachOutResponse(target string) string {
	return `{"action": {"type": "REACH_OUT", "content": "", "target": "` + target + `"}, "cognitive_state": {"goals": [], "attention": "", "emotions": ""}}`
}

func newScriptedAgent(llm llms.LLMProvider, name string) *agent.Agent {
	return agent.New(config.PersonaConfig{Name: name}, llm, config.LLMConfig{Model: name}, nil, nil)
}

func TestWorld_Step_TalkToNamedTargetDeliversOnlyToTarget(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{talkResponse("Lisa", "hi Lisa"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}
	llm.byAgent["Bystander"] = []string{doneResponse()}

	w := New("test-world", false)
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	bystander := newScriptedAgent(llm, "Bystander")
	require.NoError(t, w.AddAgents(oscar, lisa, bystander))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, lisa.EpisodicMemory().Count(), "named target must receive the TALK as a CONVERSATION stimulus")
	assert.Equal(t, 0, bystander.EpisodicMemory().Count(), "a bystander not named as target must not receive the broadcast")
}

func TestWorld_Step_TalkWithNoTargetBroadcastsWhenEnabled(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{talkResponse("", "hello everyone"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := New("test-world", true)
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	// The broadcast TALK plus Lisa's own THINK nudge and DONE event.
	assert.Equal(t, 3, lisa.EpisodicMemory().Count())
}

func TestWorld_Step_TalkWithNoTargetDoesNotBroadcastWhenDisabled(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{talkResponse("", "hello everyone"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := New("test-world", false)
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	// Only Lisa's own THINK nudge and DONE event; no TALK was delivered.
	assert.Equal(t, 2, lisa.EpisodicMemory().Count())
}

func TestWorld_Step_ReachOutGrantsMutualAccessibilityAndSocialStimuli(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{reachOutResponse("Lisa"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := New("test-world", false)
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	assert.True(t, oscar.IsAccessible("Lisa"))
	assert.True(t, lisa.IsAccessible("Oscar"))
	assert.Equal(t, 1, lisa.EpisodicMemory().Count(), "target must perceive a SOCIAL stimulus about the reach-out")
}

func TestWorld_Step_SocialNetworkRejectsReachOutAcrossUnrelatedAgents(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{reachOutResponse("Stranger"), doneResponse()}
	llm.byAgent["Stranger"] = []string{doneResponse()}

	w := NewTinySocialNetwork("social-world")
	oscar := newScriptedAgent(llm, "Oscar")
	stranger := newScriptedAgent(llm, "Stranger")
	require.NoError(t, w.AddAgents(oscar, stranger))
	// no AddRelation call: Oscar and Stranger share no relation

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	assert.False(t, oscar.IsAccessible("Stranger"), "reach-out across agents sharing no declared relation must be rejected")
	assert.False(t, stranger.IsAccessible("Oscar"))
}

func TestWorld_Step_SocialNetworkAllowsReachOutAcrossRelatedAgents(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{reachOutResponse("Lisa"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := NewTinySocialNetwork("social-world")
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))
	require.NoError(t, w.AddRelation("friend", "Oscar", "Lisa"))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	assert.True(t, oscar.IsAccessible("Lisa"))
	assert.True(t, lisa.IsAccessible("Oscar"))
}

func TestWorld_Step_DrainsPendingActionsToEmpty(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{talkResponse("Lisa", "hi"), doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := New("test-world", false)
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))

	_, err := w.Step(context.Background(), 0, false)
	require.NoError(t, err)

	assert.Empty(t, oscar.DrainPendingActions(), "Step must drain every agent's pending actions before returning")
	assert.Empty(t, lisa.DrainPendingActions())
}

func TestWorld_AddAgent_DuplicateNameRejected(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{doneResponse()}

	w := New("test-world", false)
	require.NoError(t, w.AddAgent(newScriptedAgent(llm, "Oscar")))
	assert.Error(t, w.AddAgent(newScriptedAgent(llm, "Oscar")))
}

func TestWorld_Skip_AdvancesClockWithoutPollingAgents(t *testing.T) {
	w := New("test-world", false)
	before := w.Clock()

	w.Skip(3, Hour)

	assert.Equal(t, before.Add(3*Hour), w.Clock())
}

func TestWorld_EncodeDecodeStateRoundTrip(t *testing.T) {
	llm := newScriptedLLM()
	llm.byAgent["Oscar"] = []string{doneResponse()}
	llm.byAgent["Lisa"] = []string{doneResponse()}

	w := NewTinySocialNetwork("social-world")
	oscar := newScriptedAgent(llm, "Oscar")
	lisa := newScriptedAgent(llm, "Lisa")
	require.NoError(t, w.AddAgents(oscar, lisa))
	require.NoError(t, w.AddRelation("friend", "Oscar", "Lisa"))
	w.Skip(2, Day)

	state, err := w.EncodeCompleteState()
	require.NoError(t, err)

	w2 := NewTinySocialNetwork("placeholder")
	require.NoError(t, w2.AddAgents(newScriptedAgent(llm, "Oscar"), newScriptedAgent(llm, "Lisa")))
	require.NoError(t, w2.DecodeCompleteState(state))

	assert.Equal(t, "social-world", w2.Name())
	assert.Equal(t, w.Clock(), w2.Clock())
	assert.True(t, w2.socialNetwork.connected("Oscar", "Lisa"))
}
