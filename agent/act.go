package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kadirpekel/troupe/llms"
	"github.com/kadirpekel/troupe/memory"
)

// nudgeText is the fixed THINK stimulus pre-inserted at the start of an
// act loop, nudging the agent toward eventually emitting DONE.
const nudgeText = "Think about what to do next. Remember you can stop acting by emitting a DONE action."

// Act runs the agent's cognitive loop: pre-insert a nudge, then repeatedly
// call the LLM, parse an action plus updated cognitive state, store it,
// and let faculties react, until a stop condition is reached.
//
// When untilDone is true, the loop stops once the last action is DONE, the
// hard MaxActionsBeforeDone bound is reached, or the last three actions
// are identical (loop detector). When untilDone is false, the loop runs
// exactly n iterations (n must be less than MaxActionsBeforeDone).
//
// If returnActions is true, the actions emitted this call are returned;
// they are always appended to the agent's pending-actions buffer for the
// World to drain regardless.
func (a *Agent) Act(ctx context.Context, untilDone bool, n int, returnActions bool) ([]memory.Action, error) {
	args := map[string]any{"until_done": untilDone, "n": n, "return_actions": returnActions}
	result, err := a.transact("Act", args, func() (any, error) {
		return a.act(ctx, untilDone, n)
	})
	if err != nil {
		return nil, err
	}
	actions := decodeActions(result)

	a.mu.Lock()
	a.pendingActions = append(a.pendingActions, actions...)
	a.mu.Unlock()

	if returnActions {
		return actions, nil
	}
	return nil, nil
}

func (a *Agent) act(ctx context.Context, untilDone bool, n int) ([]memory.Action, error) {
	if err := a.Think(nudgeText); err != nil {
		return nil, err
	}

	limit := MaxActionsBeforeDone
	if !untilDone {
		if n >= MaxActionsBeforeDone {
			return nil, fmt.Errorf("agent: act(n=%d) must be less than MaxActionsBeforeDone (%d)", n, MaxActionsBeforeDone)
		}
		limit = n
	}

	var actions []memory.Action
	for i := 0; i < limit; i++ {
		action, err := a.step(ctx)
		if err != nil {
			return actions, err
		}
		actions = append(actions, action)
		a.pushRecentAction(action)

		if untilDone {
			if action.Type == memory.ActionDone {
				break
			}
			if a.loopDetected() {
				break
			}
		}
	}
	return actions, nil
}

// step performs one LLM round-trip: render messages, call the LLM, parse
// its response, store the resulting event, update cognitive state, and
// let faculties process the action. Parse failures retry the whole step,
// for at most MaxParseRetries attempts in all.
func (a *Agent) step(ctx context.Context) (memory.Action, error) {
	var lastErr error
	for attempt := 0; attempt < MaxParseRetries; attempt++ {
		content, err := a.callLLM(ctx)
		if err != nil {
			return memory.Action{}, fmt.Errorf("agent: llm call: %w", err)
		}

		action, cognitiveState, perr := parseResponse(content)
		if perr != nil {
			lastErr = perr
			continue
		}

		a.applyResponse(action, cognitiveState)

		if err := a.runFaculties(ctx, action); err != nil {
			return action, fmt.Errorf("agent: faculty processing: %w", err)
		}
		return action, nil
	}
	return memory.Action{}, fmt.Errorf("agent: parsing LLM response failed after %d attempts: %w", MaxParseRetries, lastErr)
}

func (a *Agent) callLLM(ctx context.Context) (string, error) {
	a.mu.Lock()
	system, err := a.ensureSystemMessage()
	if err != nil {
		a.mu.Unlock()
		return "", err
	}
	recent := a.episodic.RetrieveRecent(true)
	llm := a.llm
	cfg := a.llmConfig
	a.mu.Unlock()

	messages := make([]llms.Message, 0, len(recent)+1)
	messages = append(messages, llms.Message{Role: llms.RoleSystem, Content: system})
	for _, e := range recent {
		messages = append(messages, llms.Message{Role: llms.Role(e.Role), Content: renderEvent(e)})
	}

	resp, err := llm.Complete(ctx, llms.CompletionRequest{
		Model:           cfg.Model,
		Messages:        messages,
		MaxTokens:       cfg.MaxTokens,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		FreqPenalty:     cfg.FreqPenalty,
		PresencePenalty: cfg.PresencePenalty,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// renderEvent flattens an episodic event into plain text for the message
// list. Assistant events with an action render the action's content;
// user events render their stimulus content.
func renderEvent(e memory.EpisodicEvent) string {
	if e.IsOmissionMarker() {
		return e.Content
	}
	if e.Action != nil {
		return e.Action.ContentString()
	}
	return e.Content
}

// flexStrings unmarshals a JSON value that is either a single string or a
// list of strings into a []string, tolerating the wire schema's "goals"
// field appearing as either shape across providers.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*f = nil
		} else {
			*f = []string{s}
		}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*f = arr
	return nil
}

type llmResponse struct {
	Action *struct {
		Type    string `json:"type"`
		Content any    `json:"content"`
		Target  string `json:"target"`
	} `json:"action"`
	CognitiveState struct {
		Goals     flexStrings `json:"goals"`
		Attention string      `json:"attention"`
		Emotions  string      `json:"emotions"`
		Context   flexStrings `json:"context"`
	} `json:"cognitive_state"`
}

// parseResponse extracts the first balanced JSON object from content and
// decodes it into an action and cognitive state. Missing the required
// "action" key (or "action.type") is a parse failure, per spec.md §4.5's
// LLM robustness requirement.
func parseResponse(content string) (memory.Action, memory.CognitiveState, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return memory.Action{}, memory.CognitiveState{}, err
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return memory.Action{}, memory.CognitiveState{}, fmt.Errorf("agent: decoding response JSON: %w", err)
	}
	if resp.Action == nil || resp.Action.Type == "" {
		return memory.Action{}, memory.CognitiveState{}, fmt.Errorf("agent: response missing required action.type")
	}

	action := memory.Action{
		Type:    memory.ActionKind(resp.Action.Type),
		Content: resp.Action.Content,
		Target:  resp.Action.Target,
	}
	cogState := memory.CognitiveState{
		Goals:     []string(resp.CognitiveState.Goals),
		Attention: resp.CognitiveState.Attention,
		Emotions:  resp.CognitiveState.Emotions,
		Context:   []string(resp.CognitiveState.Context),
	}
	return action, cogState, nil
}

// extractJSONObject finds the first balanced {...} region in content,
// tolerating prose or markdown fences around the JSON payload.
func extractJSONObject(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", fmt.Errorf("agent: no JSON object found in response")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("agent: unbalanced JSON object in response")
}

// applyResponse stores the assistant event, folds the cognitive state
// into the persona, and marks the system prompt stale.
func (a *Agent) applyResponse(action memory.Action, cogState memory.CognitiveState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	actionCopy := action
	cogCopy := cogState
	a.episodic.Store(memory.EpisodicEvent{
		Role:                memory.RoleAssistant,
		Content:             action.ContentString(),
		SimulationTimestamp: a.currentTimestamp(),
		Action:              &actionCopy,
		CognitiveState:      &cogCopy,
	})

	a.persona.CurrentGoals = cogState.Goals
	a.persona.CurrentAttention = cogState.Attention
	a.persona.CurrentEmotions = cogState.Emotions
	a.persona.CurrentContext = cogState.Context
	a.resetPrompt()
}

// runFaculties offers action to each faculty in order, stopping at the
// first one that claims it.
func (a *Agent) runFaculties(ctx context.Context, action memory.Action) error {
	a.mu.Lock()
	faculties := a.faculties
	a.mu.Unlock()

	for _, f := range faculties {
		consumed, err := f.ProcessAction(ctx, a, action)
		if err != nil {
			return err
		}
		if consumed {
			return nil
		}
	}
	return nil
}

func (a *Agent) pushRecentAction(action memory.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recentActions = append(a.recentActions, action)
	if len(a.recentActions) > 3 {
		a.recentActions = a.recentActions[len(a.recentActions)-3:]
	}
}

// loopDetected reports whether the last three actions are identical,
// signaling the agent is stuck.
func (a *Agent) loopDetected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.recentActions) < 3 {
		return false
	}
	last3 := a.recentActions[len(a.recentActions)-3:]
	return last3[0].Equal(last3[1]) && last3[1].Equal(last3[2])
}

// decodeActions normalizes the result of a transact("Act", ...) call into
// a concrete []memory.Action. On a cache miss the Transactor returns the
// value fn produced directly, already typed. On a cache hit the
// Transactor decoded the cached output from JSON, so the dynamic type is
// the generic []interface{}/map[string]interface{} shape any/json.Unmarshal
// produces; round-tripping it through JSON again recovers the concrete
// type without requiring the Transactor interface to be generic.
func decodeActions(v any) []memory.Action {
	if v == nil {
		return nil
	}
	if actions, ok := v.([]memory.Action); ok {
		return actions
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var actions []memory.Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil
	}
	return actions
}

// ListenAndAct is a composite helper: Listen then Act(untilDone=true).
func (a *Agent) ListenAndAct(ctx context.Context, speech string) ([]memory.Action, error) {
	if err := a.Listen(speech, ""); err != nil {
		return nil, err
	}
	return a.Act(ctx, true, 0, true)
}

// SeeAndAct is a composite helper: See then Act(untilDone=true).
func (a *Agent) SeeAndAct(ctx context.Context, description string) ([]memory.Action, error) {
	if err := a.See(description, ""); err != nil {
		return nil, err
	}
	return a.Act(ctx, true, 0, true)
}

// ThinkAndAct is a composite helper: Think then Act(untilDone=true).
func (a *Agent) ThinkAndAct(ctx context.Context, text string) ([]memory.Action, error) {
	if err := a.Think(text); err != nil {
		return nil, err
	}
	return a.Act(ctx, true, 0, true)
}
