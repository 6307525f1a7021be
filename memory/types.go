// Package memory provides the two memory models an Agent consults while
// prompting: EpisodicMemory, an ordered append-only event log with
// prefix+tail windowing, and SemanticMemory, a vector-indexed store over
// ingested documents and web pages.
package memory

// Role identifies the speaker of an episodic event, mirroring llms.Role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StimulusKind enumerates the inbound event kinds an agent can perceive.
type StimulusKind string

const (
	StimulusConversation       StimulusKind = "CONVERSATION"
	StimulusSocial             StimulusKind = "SOCIAL"
	StimulusVisual             StimulusKind = "VISUAL"
	StimulusThought            StimulusKind = "THOUGHT"
	StimulusInternalGoal       StimulusKind = "INTERNAL_GOAL_FORMULATION"
)

// Stimulus is one inbound event folded into a user-role episodic event.
type Stimulus struct {
	Type    StimulusKind `json:"type"`
	Content string       `json:"content"`
	Source  string       `json:"source,omitempty"`
}

// ActionKind enumerates the outbound action kinds the core ships. Faculties
// extend the grammar with further kinds (RECALL, CONSULT, LIST_DOCUMENTS,
// WRITE_DOCUMENT, ...); the type is a plain string so the grammar never
// needs to be closed.
type ActionKind string

const (
	ActionDone     ActionKind = "DONE"
	ActionTalk     ActionKind = "TALK"
	ActionThink    ActionKind = "THINK"
	ActionReachOut ActionKind = "REACH_OUT"
)

// Action is one outbound event an agent emits, parsed from the LLM's JSON
// response. Content is the decoded JSON value (string for plain text
// actions like TALK/THINK, or a map for structured actions like
// WRITE_DOCUMENT) — the faculty or dispatcher that owns a given ActionKind
// knows which shape to expect.
type Action struct {
	Type    ActionKind `json:"type"`
	Content any        `json:"content"`
	Target  string     `json:"target,omitempty"`
}

// ContentString returns Content as a string, coercing non-string values
// via fmt if necessary. Most action kinds carry plain text.
func (a Action) ContentString() string {
	switch v := a.Content.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return stringifyAny(v)
	}
}

// ContentMap returns Content as a map, for structured action kinds such as
// WRITE_DOCUMENT. Returns nil, false if Content isn't a JSON object.
func (a Action) ContentMap() (map[string]any, bool) {
	m, ok := a.Content.(map[string]any)
	return m, ok
}

// Equal reports whether two actions are identical, used by the agent's act
// loop to detect a stuck repeat.
func (a Action) Equal(other Action) bool {
	return a.Type == other.Type && a.Target == other.Target && a.ContentString() == other.ContentString()
}

// CognitiveState is the agent's working frame of mind, re-rendered into
// every system prompt and updated by every LLM response.
type CognitiveState struct {
	Goals     []string `json:"goals"`
	Attention string   `json:"attention"`
	Emotions  string   `json:"emotions"`
	Context   []string `json:"context"`
}

// EpisodicEvent is one entry in an agent's episodic memory.
type EpisodicEvent struct {
	Role                Role            `json:"role"`
	Content             string          `json:"content"`
	SimulationTimestamp string          `json:"simulation_timestamp,omitempty"`
	Stimuli             []Stimulus      `json:"stimuli,omitempty"`
	Action              *Action         `json:"action,omitempty"`
	CognitiveState      *CognitiveState `json:"cognitive_state,omitempty"`

	omission bool
}

// IsOmissionMarker reports whether this event is a windowing placeholder
// rather than a real stored event (EpisodicMemory.Retrieve splices these
// in; they are never appended to the underlying log).
func (e EpisodicEvent) IsOmissionMarker() bool {
	return e.Role == RoleSystem && e.omission
}
