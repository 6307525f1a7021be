package world

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kadirpekel/troupe/agent"
)

// relationTriple is one undirected edge of a relationGraph, deduplicated
// and ordered for deterministic encoding.
type relationTriple struct {
	Relation string `json:"relation"`
	A        string `json:"a"`
	B        string `json:"b"`
}

// encodeTriples flattens the relation graph's undirected edge sets into a
// deduplicated, sorted list suitable for JSON round-tripping.
func (g *relationGraph) encodeTriples() []relationTriple {
	type key struct{ relation, a, b string }
	seen := make(map[key]bool)
	var out []relationTriple
	for relation, peers := range g.edges {
		for a, bs := range peers {
			for b := range bs {
				lo, hi := a, b
				if lo > hi {
					lo, hi = hi, lo
				}
				k := key{relation, lo, hi}
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, relationTriple{Relation: relation, A: lo, B: hi})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relation != out[j].Relation {
			return out[i].Relation < out[j].Relation
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// spec is the JSON-serializable shape of a World's own state — agent
// membership, the simulated clock, broadcast policy, and (in
// social-network mode) the declared relations. Agents themselves encode
// and decode independently via their own EncodeCompleteState; this spec
// carries only their names, in order.
type spec struct {
	Name                string           `json:"name"`
	AgentOrder          []string         `json:"agent_order,omitempty"`
	Clock               time.Time        `json:"clock"`
	BroadcastIfNoTarget bool             `json:"broadcast_if_no_target"`
	Relations           []relationTriple `json:"relations,omitempty"`
}

// EncodeCompleteState returns the World's own serializable attributes —
// not including its agents' internal state, which the Simulation's state
// snapshot encodes separately per agent.
func (w *World) EncodeCompleteState() (map[string]any, error) {
	s := spec{
		Name:                w.name,
		Clock:               w.clock,
		BroadcastIfNoTarget: w.broadcastIfNoTarget,
	}
	s.AgentOrder = make([]string, len(w.order))
	for i, a := range w.order {
		s.AgentOrder[i] = a.Name()
	}
	if w.socialNetwork != nil {
		s.Relations = w.socialNetwork.encodeTriples()
	}
	return toMap(s)
}

// DecodeCompleteState restores the World's own state: clock, broadcast
// policy, declared relations, and agent ordering. Agents named in
// AgentOrder must already be present (added via AddAgent) — decoding
// only reorders the live references, it never fabricates new agents.
func (w *World) DecodeCompleteState(state map[string]any) error {
	var s spec
	if err := fromMap(state, &s); err != nil {
		return fmt.Errorf("world: decoding state: %w", err)
	}

	w.name = s.Name
	w.clock = s.Clock
	w.broadcastIfNoTarget = s.BroadcastIfNoTarget

	if len(s.Relations) > 0 {
		if w.socialNetwork == nil {
			w.socialNetwork = newRelationGraph()
		} else {
			w.socialNetwork.edges = make(map[string]map[string]map[string]bool)
		}
		for _, t := range s.Relations {
			w.socialNetwork.addRelation(t.Relation, t.A, t.B)
		}
	}

	if len(s.AgentOrder) > 0 {
		order := make([]*agent.Agent, 0, len(s.AgentOrder))
		for _, name := range s.AgentOrder {
			if a, ok := w.index[name]; ok {
				order = append(order, a)
			}
		}
		w.order = order
	}
	return nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("world: marshaling state: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("world: unmarshaling state: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any, v any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
