// Package runtime threads an explicit context through the engine in place
// of the process-wide globals spec.md §9's "Globals → explicit context"
// design note calls out: a process-wide agent registry, a process-wide
// world registry, and a "current simulation" singleton. Runtime holds all
// three as fields, and a caller that wants isolated simulations in the
// same process constructs more than one Runtime rather than relying on
// package-level state.
package runtime

import (
	"fmt"
	"sync"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/registry"
	"github.com/kadirpekel/troupe/simulation"
	"github.com/kadirpekel/troupe/world"
)

// defaultSlot is the name under which Start/Current track the simulation
// started with no explicit slot name, matching spec.md §4.7's "at most
// one simulation started at a time in the default slot" invariant. Named
// slots beyond the default are a Runtime extension the spec doesn't
// forbid: they let a caller hold several independent simulations (e.g. a
// sandbox run alongside a recorded one) without a second Runtime.
const defaultSlot = ""

// Runtime owns the process's agent, world, and simulation registries and
// enforces that at most one simulation is started under a given slot at a
// time.
type Runtime struct {
	mu sync.Mutex

	agents      *registry.Registry[*agent.Agent]
	worlds      *registry.Registry[*world.World]
	simulations *registry.Registry[*simulation.Simulation]

	started map[string]*simulation.Simulation // slot name -> started simulation
}

// New constructs an empty Runtime.
func New() *Runtime {
	return &Runtime{
		agents:      registry.New[*agent.Agent](),
		worlds:      registry.New[*world.World](),
		simulations: registry.New[*simulation.Simulation](),
		started:     make(map[string]*simulation.Simulation),
	}
}

// RegisterAgent adds a freestanding agent to the process-wide agent
// registry, failing if its name is already taken by another registered
// agent. This registry is independent of any Simulation's own agent
// registry — it exists so a name can be resolved back to a live *Agent
// (e.g. when decoding a reference) even for agents never added to a
// Simulation.
func (r *Runtime) RegisterAgent(a *agent.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.agents.Register(a.Name(), a); err != nil {
		return fmt.Errorf("runtime: %w", err)
	}
	return nil
}

// RegisterWorld adds a world to the process-wide world registry.
func (r *Runtime) RegisterWorld(w *world.World) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.worlds.Register(w.Name(), w); err != nil {
		return fmt.Errorf("runtime: %w", err)
	}
	return nil
}

// Agent resolves a name against the process-wide agent registry.
func (r *Runtime) Agent(name string) (*agent.Agent, bool) {
	return r.agents.Get(name)
}

// World resolves a name against the process-wide world registry.
func (r *Runtime) World(name string) (*world.World, bool) {
	return r.worlds.Get(name)
}

// NewSimulation constructs and registers a Simulation under id, failing
// if the id is already registered.
func (r *Runtime) NewSimulation(id string) (*simulation.Simulation, error) {
	sim := simulation.New(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.simulations.Register(sim.ID(), sim); err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	return sim, nil
}

// Start begins sim and installs it as the started simulation for slot
// (the empty string names the default slot). It fails if another
// simulation is already started in that slot — spec.md §4.7's "at most
// one simulation started at a time in the default slot" invariant,
// generalized to named slots.
func (r *Runtime) Start(slot string, sim *simulation.Simulation, cachePath string, autoCheckpoint bool) error {
	r.mu.Lock()
	if existing, ok := r.started[slot]; ok && existing.Status() == simulation.StatusStarted {
		r.mu.Unlock()
		return fmt.Errorf("runtime: a simulation is already started in slot %q", slotLabel(slot))
	}
	r.mu.Unlock()

	if err := sim.Begin(cachePath, autoCheckpoint); err != nil {
		return err
	}

	r.mu.Lock()
	r.started[slot] = sim
	r.mu.Unlock()
	return nil
}

// StartDefault is Start against the default slot.
func (r *Runtime) StartDefault(sim *simulation.Simulation, cachePath string, autoCheckpoint bool) error {
	return r.Start(defaultSlot, sim, cachePath, autoCheckpoint)
}

// Current returns the simulation started in slot, if any.
func (r *Runtime) Current(slot string) (*simulation.Simulation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sim, ok := r.started[slot]
	return sim, ok
}

// CurrentDefault is Current against the default slot.
func (r *Runtime) CurrentDefault() (*simulation.Simulation, bool) {
	return r.Current(defaultSlot)
}

// Stop ends the simulation started in slot and clears the slot.
func (r *Runtime) Stop(slot string) error {
	r.mu.Lock()
	sim, ok := r.started[slot]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("runtime: no simulation started in slot %q", slotLabel(slot))
	}
	if err := sim.End(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.started, slot)
	r.mu.Unlock()
	return nil
}

// StopDefault is Stop against the default slot.
func (r *Runtime) StopDefault() error {
	return r.Stop(defaultSlot)
}

func slotLabel(slot string) string {
	if slot == defaultSlot {
		return "default"
	}
	return slot
}
