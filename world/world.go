// Package world implements the environment a set of agents act inside:
// an ordered agent registry, a simulated clock, broadcast helpers, and
// the per-step action dispatch table (TALK, REACH_OUT). An optional
// social-network mode restricts REACH_OUT to agents sharing a declared
// relation and recomputes accessibility at the head of every step,
// matching the TinySocialNetwork variant in spec.md §4.6.
package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/kadirpekel/troupe/agent"
)

// Fixed unit conversions for World.Run/Skip's timedelta helpers.
const (
	Minute = time.Minute
	Hour   = time.Hour
	Day    = 24 * time.Hour
	Week   = 7 * 24 * time.Hour
	Month  = 4 * Week        // fixed approximation, per spec.md §4.6
	Year   = 365 * 24 * time.Hour
)

// World holds an ordered set of agents, a simulated clock, and the
// dispatch rules for their emitted actions.
type World struct {
	name                string
	order               []*agent.Agent
	index               map[string]*agent.Agent
	clock               time.Time
	broadcastIfNoTarget bool
	displayBuffer       []string
	simulationID        string
	transactor          agent.Transactor

	// socialNetwork, when non-nil, restricts REACH_OUT to agents sharing a
	// relation and is recomputed into the agents' accessibility graph at
	// the head of every step. A plain World has a nil socialNetwork.
	socialNetwork *relationGraph
}

// relationGraph holds named undirected edge sets over agent names.
type relationGraph struct {
	edges map[string]map[string]map[string]bool // relation -> agentName -> peerName -> true
}

func newRelationGraph() *relationGraph {
	return &relationGraph{edges: make(map[string]map[string]map[string]bool)}
}

func (g *relationGraph) addRelation(relation, a, b string) {
	if g.edges[relation] == nil {
		g.edges[relation] = make(map[string]map[string]bool)
	}
	if g.edges[relation][a] == nil {
		g.edges[relation][a] = make(map[string]bool)
	}
	if g.edges[relation][b] == nil {
		g.edges[relation][b] = make(map[string]bool)
	}
	g.edges[relation][a][b] = true
	g.edges[relation][b][a] = true
}

// connected reports whether a and b share any relation.
func (g *relationGraph) connected(a, b string) bool {
	for _, peers := range g.edges {
		if peers[a] != nil && peers[a][b] {
			return true
		}
	}
	return false
}

// peersOf returns every agent name connected to name by some relation.
func (g *relationGraph) peersOf(name string) []string {
	seen := make(map[string]bool)
	for _, peers := range g.edges {
		for peer := range peers[name] {
			seen[peer] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// New constructs a plain World. broadcastIfNoTarget controls whether a
// TALK action with no resolvable target is broadcast to every other
// agent.
func New(name string, broadcastIfNoTarget bool) *World {
	return &World{
		name:                name,
		index:               make(map[string]*agent.Agent),
		broadcastIfNoTarget: broadcastIfNoTarget,
	}
}

// NewTinySocialNetwork constructs a World in social-network mode: agents
// are accessible to each other only along declared relations, and
// REACH_OUT requires the sender and target to share one.
func NewTinySocialNetwork(name string) *World {
	w := New(name, false)
	w.socialNetwork = newRelationGraph()
	return w
}

// Name returns the world's unique name, satisfying agent.WorldHandle.
func (w *World) Name() string { return w.name }

// Clock returns the world's current simulated time.
func (w *World) Clock() time.Time { return w.clock }

// transact wraps fn in the world's Transactor, if attached; otherwise fn
// runs directly with no memoization. World shares the same narrow
// agent.Transactor interface agents use — in practice both resolve to
// the same *simulation.Simulation, whose in-transaction flag is shared
// across owners, per spec.md §4.7's "nested transactions ... not
// individually memoized".
func (w *World) transact(funcName string, args any, fn func() (any, error)) (any, error) {
	if w.transactor == nil {
		return fn()
	}
	return w.transactor.Do(w.name, funcName, args, fn)
}

// AddRelation declares relation as holding between a and b. Only valid
// on a World constructed with NewTinySocialNetwork.
func (w *World) AddRelation(relation, a, b string) error {
	if w.socialNetwork == nil {
		return fmt.Errorf("world: AddRelation requires a social-network world")
	}
	_, err := w.transact("AddRelation", map[string]any{"relation": relation, "a": a, "b": b}, func() (any, error) {
		w.socialNetwork.addRelation(relation, a, b)
		return nil, nil
	})
	return err
}

// AttachSimulation binds the world, and every agent currently in it, to a
// transactional simulation context.
func (w *World) AttachSimulation(simulationID string, t agent.Transactor) {
	w.simulationID = simulationID
	w.transactor = t
	for _, a := range w.order {
		a.AttachSimulation(simulationID, t)
	}
}

// AddAgent adds a single agent, failing if its name is already present.
func (w *World) AddAgent(a *agent.Agent) error {
	_, err := w.transact("AddAgent", a.Name(), func() (any, error) {
		if _, exists := w.index[a.Name()]; exists {
			return nil, fmt.Errorf("world: agent %q already present", a.Name())
		}
		w.index[a.Name()] = a
		w.order = append(w.order, a)
		a.AttachWorld(w)
		if w.transactor != nil {
			a.AttachSimulation(w.simulationID, w.transactor)
		}
		return nil, nil
	})
	return err
}

// AddAgents adds each agent in order, stopping at the first failure.
func (w *World) AddAgents(agents ...*agent.Agent) error {
	for _, a := range agents {
		if err := w.AddAgent(a); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAgent removes the named agent, if present.
func (w *World) RemoveAgent(name string) error {
	_, err := w.transact("RemoveAgent", name, func() (any, error) {
		a, ok := w.index[name]
		if !ok {
			return nil, fmt.Errorf("world: agent %q not present", name)
		}
		delete(w.index, name)
		for i, cur := range w.order {
			if cur == a {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
		a.DetachWorld()
		return nil, nil
	})
	return err
}

// RemoveAgents removes each named agent, stopping at the first failure.
func (w *World) RemoveAgents(names ...string) error {
	for _, n := range names {
		if err := w.RemoveAgent(n); err != nil {
			return err
		}
	}
	return nil
}

// GetAgentByName resolves an agent by name.
func (w *World) GetAgentByName(name string) (*agent.Agent, bool) {
	a, ok := w.index[name]
	return a, ok
}

// Agents returns the agents in insertion order.
func (w *World) Agents() []*agent.Agent {
	out := make([]*agent.Agent, len(w.order))
	copy(out, w.order)
	return out
}

// MakeEveryoneAccessible grants every agent mutual accessibility to every
// other agent in the world.
func (w *World) MakeEveryoneAccessible() error {
	for _, a := range w.order {
		for _, b := range w.order {
			if a == b {
				continue
			}
			if err := a.MakeAgentAccessible(b, "world-wide accessibility"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Broadcast delivers a CONVERSATION stimulus to every agent except the
// one named source (empty source excludes none).
func (w *World) Broadcast(speech, source string) error {
	for _, a := range w.order {
		if a.Name() == source {
			continue
		}
		if err := a.Listen(speech, source); err != nil {
			return fmt.Errorf("world: broadcast to %q: %w", a.Name(), err)
		}
	}
	return nil
}

// BroadcastThought delivers a THOUGHT stimulus to every agent except
// source.
func (w *World) BroadcastThought(text, source string) error {
	for _, a := range w.order {
		if a.Name() == source {
			continue
		}
		if err := a.Think(text); err != nil {
			return fmt.Errorf("world: broadcast thought to %q: %w", a.Name(), err)
		}
	}
	return nil
}

// BroadcastInternalGoal delivers an INTERNAL_GOAL_FORMULATION stimulus to
// every agent except source.
func (w *World) BroadcastInternalGoal(text, source string) error {
	for _, a := range w.order {
		if a.Name() == source {
			continue
		}
		if err := a.InternalizeGoal(text); err != nil {
			return fmt.Errorf("world: broadcast internal goal to %q: %w", a.Name(), err)
		}
	}
	return nil
}

// BroadcastContextChange applies context to every agent except source.
func (w *World) BroadcastContextChange(newContext []string, source string) error {
	for _, a := range w.order {
		if a.Name() == source {
			continue
		}
		if err := a.ChangeContext(newContext); err != nil {
			return fmt.Errorf("world: broadcast context change to %q: %w", a.Name(), err)
		}
	}
	return nil
}
