// Package simulation implements the transactional lifecycle spec.md §4.7
// describes: a Simulation owns the agents and worlds created under it,
// wraps every one of their state-mutating public methods in a
// Transaction, and maintains a content-addressed trace chain so that
// re-running an identical program against the same cache file replays
// deterministically without re-invoking the LLM.
package simulation

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/registry"
	"github.com/kadirpekel/troupe/world"
)

// Status is a Simulation's lifecycle state.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusStarted Status = "started"
)

// Simulation owns a trace chain and the agents/worlds registered under
// it. At most one *Simulation should be started against a given cache
// file at a time; runtime.Runtime enforces the "default slot" exclusivity
// spec.md §4.7 describes (see package runtime).
type Simulation struct {
	mu sync.Mutex

	id     string
	status Status

	cachePath      string
	autoCheckpoint bool
	dirty          bool

	cachedTrace   []TraceNode
	execTrace     []TraceNode
	inTransaction bool

	agents *registry.Registry[*agent.Agent]
	worlds *registry.Registry[*world.World]
}

// New constructs a stopped Simulation. An empty id is replaced with a
// freshly generated one.
func New(id string) *Simulation {
	if id == "" {
		id = uuid.NewString()
	}
	return &Simulation{id: id, status: StatusStopped}
}

// ID returns the simulation's identifier.
func (s *Simulation) ID() string { return s.id }

// Status returns the simulation's current lifecycle state.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Begin starts the simulation: registries are reset, the trace position
// resets to the chain's head, and any cache file at cachePath is loaded
// as the cached trace to replay against. An empty cachePath disables
// caching entirely — every call executes directly and nothing is
// persisted.
func (s *Simulation) Begin(cachePath string, autoCheckpoint bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusStarted {
		return fmt.Errorf("simulation: %q is already started", s.id)
	}

	cached, err := LoadTraceCache(cachePath)
	if err != nil {
		return err
	}

	s.status = StatusStarted
	s.cachePath = cachePath
	s.autoCheckpoint = autoCheckpoint
	s.cachedTrace = cached
	s.execTrace = nil
	s.inTransaction = false
	s.dirty = false
	s.agents = registry.New[*agent.Agent]()
	s.worlds = registry.New[*world.World]()
	return nil
}

// Checkpoint flushes the execution trace to the cache file if it has
// unpersisted changes. A no-op when caching is disabled (empty
// cachePath) or nothing has changed since the last flush.
func (s *Simulation) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpointLocked()
}

func (s *Simulation) checkpointLocked() error {
	if !s.dirty || s.cachePath == "" {
		return nil
	}
	if err := SaveTraceCache(s.cachePath, s.execTrace); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// End checkpoints and stops the simulation.
func (s *Simulation) End() error {
	s.mu.Lock()
	if s.status != StatusStarted {
		s.mu.Unlock()
		return fmt.Errorf("simulation: %q is not started", s.id)
	}
	err := s.checkpointLocked()
	s.status = StatusStopped
	s.mu.Unlock()
	return err
}

// AddAgent registers a freestanding agent (one not yet added to any
// World) with the simulation and attaches it to this Transactor, failing
// if the name is already known — either as another freestanding agent or
// as a member of a registered World.
func (s *Simulation) AddAgent(a *agent.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusStarted {
		return fmt.Errorf("simulation: %q is not started", s.id)
	}
	if s.nameKnownLocked(a.Name()) {
		return fmt.Errorf("simulation: agent %q already registered", a.Name())
	}
	if err := s.agents.Register(a.Name(), a); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	a.AttachSimulation(s.id, s)
	return nil
}

// AddWorld registers a World with the simulation and attaches it (and
// every agent currently in it) to this Transactor, failing if the
// World's name, or any of its current agents' names, are already known.
func (s *Simulation) AddWorld(w *world.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusStarted {
		return fmt.Errorf("simulation: %q is not started", s.id)
	}
	if _, exists := s.worlds.Get(w.Name()); exists {
		return fmt.Errorf("simulation: world %q already registered", w.Name())
	}
	for _, a := range w.Agents() {
		if s.nameKnownLocked(a.Name()) {
			return fmt.Errorf("simulation: agent %q already registered", a.Name())
		}
	}
	if err := s.worlds.Register(w.Name(), w); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	w.AttachSimulation(s.id, s)
	return nil
}

// nameKnownLocked reports whether name is already used by a freestanding
// agent or by a member of any registered world. Callers must hold s.mu.
func (s *Simulation) nameKnownLocked(name string) bool {
	if s.agents != nil {
		if _, ok := s.agents.Get(name); ok {
			return true
		}
	}
	if s.worlds != nil {
		for _, wname := range s.worlds.List() {
			w, ok := s.worlds.Get(wname)
			if !ok {
				continue
			}
			if _, ok := w.GetAgentByName(name); ok {
				return true
			}
		}
	}
	return false
}

// findAgentLocked resolves name to a live *agent.Agent across both
// freestanding agents and world membership. Callers must hold s.mu.
func (s *Simulation) findAgentLocked(name string) (*agent.Agent, bool) {
	if s.agents != nil {
		if a, ok := s.agents.Get(name); ok {
			return a, true
		}
	}
	if s.worlds != nil {
		for _, wname := range s.worlds.List() {
			w, ok := s.worlds.Get(wname)
			if !ok {
				continue
			}
			if a, ok := w.GetAgentByName(name); ok {
				return a, true
			}
		}
	}
	return nil, false
}

func (s *Simulation) findWorldLocked(name string) (*world.World, bool) {
	if s.worlds == nil {
		return nil, false
	}
	return s.worlds.Get(name)
}
