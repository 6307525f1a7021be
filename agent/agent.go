// Package agent implements the persona-bearing simulated entity: its
// cognitive state, its two memories, its faculties, and the act loop that
// turns perceived stimuli into LLM-driven actions.
//
// Agent depends on World and Simulation only through narrow, same-package
// interfaces (WorldHandle, Transactor) that the world and simulation
// packages' concrete types satisfy structurally. This keeps the import
// graph acyclic: world and simulation both import agent, never the
// reverse.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/llms"
	"github.com/kadirpekel/troupe/memory"
)

// MaxActionsBeforeDone bounds an until-done act loop even if the agent
// never emits DONE.
const MaxActionsBeforeDone = 15

// MaxParseRetries bounds how many LLM calls a single act iteration makes in
// total (the first call included) when responses fail JSON-shape parsing.
const MaxParseRetries = 5

// WorldHandle is the narrow view of a containing World an Agent needs: just
// enough to name it in encoded state. *world.World satisfies this
// structurally.
type WorldHandle interface {
	Name() string
}

// Transactor wraps a mutating call in the simulation's transactional
// replay protocol. *simulation.Simulation satisfies this structurally. A
// nil Transactor means the agent is not attached to a simulation, and
// every call executes directly with no memoization.
type Transactor interface {
	Do(owner, funcName string, args any, fn func() (any, error)) (any, error)
}

// ActionHost is the view of an Agent a Faculty is handed to process an
// action: identity, the ability to inject a THINK stimulus, and read
// access to semantic memory. *Agent satisfies this structurally.
type ActionHost interface {
	Name() string
	Think(text string) error
	SemanticMemory() *memory.SemanticMemory
}

// Faculty is a capability plug-in that both extends the action grammar
// and reacts to matching actions. It must return true iff it consumed the
// action; an unconsumed action is left for the World to dispatch.
type Faculty interface {
	Name() string
	ProcessAction(ctx context.Context, host ActionHost, action memory.Action) (bool, error)
	ActionsDefinitionsPrompt() string
	ActionsConstraintsPrompt() string
}

// accessibleAgent records one edge of the agent's accessibility graph: the
// name of an agent this one may TALK to or REACH_OUT toward, plus the
// description the grantor supplied.
type accessibleAgent struct {
	Name        string
	Description string
}

// Agent is a persona-bearing simulated entity: persona configuration,
// cognitive state (folded into the persona), episodic and semantic
// memory, an ordered list of faculties, a pending-actions buffer awaiting
// World dispatch, and an optional attachment to a containing World and
// Simulation.
type Agent struct {
	mu sync.Mutex

	name    string
	persona *config.PersonaConfig

	episodic *memory.EpisodicMemory
	semantic *memory.SemanticMemory

	faculties []Faculty

	llm       llms.LLMProvider
	llmConfig config.LLMConfig

	pendingActions []memory.Action
	displayBuffer  []string
	recentActions  []memory.Action // last few, for loop detection

	accessible map[string]accessibleAgent

	world        WorldHandle
	transactor   Transactor
	simulationID string

	systemMessage string
	promptDirty   bool
}

// New constructs an Agent from a persona, an LLM binding, and the memory
// backends it was configured with. Faculties and World/Simulation
// attachment are set after construction via SetFaculties/Attach*.
func New(persona config.PersonaConfig, llm llms.LLMProvider, llmConfig config.LLMConfig, episodic *memory.EpisodicMemory, semantic *memory.SemanticMemory) *Agent {
	if episodic == nil {
		episodic = memory.NewEpisodicMemory(0, 0)
	}
	p := persona
	return &Agent{
		name:       p.Name,
		persona:    &p,
		episodic:   episodic,
		semantic:   semantic,
		llm:        llm,
		llmConfig:  llmConfig,
		accessible: make(map[string]accessibleAgent),
		promptDirty: true,
	}
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Persona returns a copy of the agent's current persona configuration.
func (a *Agent) Persona() config.PersonaConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.persona
}

// EpisodicMemory exposes the agent's episodic log.
func (a *Agent) EpisodicMemory() *memory.EpisodicMemory { return a.episodic }

// SemanticMemory exposes the agent's semantic store, satisfying
// ActionHost for the Recall and Files-and-Web-Grounding faculties.
func (a *Agent) SemanticMemory() *memory.SemanticMemory { return a.semantic }

// SetFaculties installs the agent's ordered faculty list. Faculties
// contribute both action-grammar fragments to the system prompt and
// action-handling behavior during Act.
func (a *Agent) SetFaculties(faculties ...Faculty) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.faculties = faculties
	a.promptDirty = true
}

// AttachWorld records the World this agent has been added to. An agent
// belongs to at most one World at a time.
func (a *Agent) AttachWorld(w WorldHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.world = w
}

// DetachWorld clears the agent's World attachment.
func (a *Agent) DetachWorld() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.world = nil
}

// AttachSimulation binds the agent to a transactional simulation context.
func (a *Agent) AttachSimulation(simulationID string, t Transactor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.simulationID = simulationID
	a.transactor = t
}

// DrainPendingActions removes and returns every action accumulated since
// the last drain, in emission order. The World calls this once per agent
// per step; after it returns, the invariant "pending_actions is empty"
// holds.
func (a *Agent) DrainPendingActions() []memory.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pendingActions
	a.pendingActions = nil
	return out
}

// transact wraps fn in the agent's Transactor, if attached; otherwise fn
// runs directly with no memoization.
func (a *Agent) transact(funcName string, args any, fn func() (any, error)) (any, error) {
	t := a.transactorRef()
	if t == nil {
		return fn()
	}
	return t.Do(a.name, funcName, args, fn)
}

func (a *Agent) transactorRef() Transactor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transactor
}

// resetPrompt marks the cached system message stale. Callers must hold
// a.mu. Per spec.md §9's memoization note, actual rendering is deferred
// to the next call that needs it rather than redone eagerly here.
func (a *Agent) resetPrompt() {
	a.promptDirty = true
}

func (a *Agent) currentTimestamp() string {
	return a.persona.CurrentDatetime
}

// sortedAccessibleNames returns the agent's accessibility edges' target
// names, sorted, for deterministic persona rendering.
func (a *Agent) sortedAccessibleNames() []string {
	names := make([]string, 0, len(a.accessible))
	for name := range a.accessible {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Agent) String() string {
	return fmt.Sprintf("agent.Agent(%q)", a.name)
}

var _ ActionHost = (*Agent)(nil)
