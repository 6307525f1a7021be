package simulation

import (
	"encoding/json"
	"fmt"
)

// Do implements agent.Transactor (and the identical narrow interface
// world.World expects): it wraps fn in the simulation's transactional
// replay protocol, per spec.md §4.7's "Transactional call protocol".
//
//  1. If the simulation isn't started, fn runs directly — no caching.
//  2. If this call is nested inside an outer transactional call already
//     in flight, fn runs directly — inner calls are not individually
//     memoized.
//  3. Otherwise this is a top-level call. Compute event_hash and compare
//     against the cached node at the current position: on a match
//     (cache hit), skip fn entirely, decode the cached state into the
//     live registries, and return the cached output. On a mismatch
//     (cache miss), drop any cached suffix past this position, run fn,
//     and append a freshly encoded node to both the execution and
//     cached traces.
func (s *Simulation) Do(owner, funcName string, args any, fn func() (any, error)) (any, error) {
	s.mu.Lock()

	if s.status != StatusStarted {
		s.mu.Unlock()
		return fn()
	}
	if s.inTransaction {
		s.mu.Unlock()
		return fn()
	}

	eventHash := stableDigest(owner, funcName, args)
	pos := len(s.execTrace)

	if pos < len(s.cachedTrace) && s.cachedTrace[pos].EventHash == eventHash {
		node := s.cachedTrace[pos]
		s.execTrace = append(s.execTrace, node)
		s.mu.Unlock()

		if err := s.decodeState(node.EncodedState); err != nil {
			return nil, err
		}
		return s.decodeOutput(node.EncodedOutput)
	}

	// Cache miss: enter the transaction and drop any cached suffix past
	// the current position — it belongs to a diverged future.
	s.cachedTrace = s.cachedTrace[:pos]
	s.inTransaction = true
	s.mu.Unlock()

	output, err := fn()

	s.mu.Lock()
	s.inTransaction = false
	if err != nil {
		s.mu.Unlock()
		return output, err
	}

	encodedState, encErr := s.encodeStateLocked()
	if encErr != nil {
		s.mu.Unlock()
		return output, fmt.Errorf("simulation: encoding post-call state: %w", encErr)
	}

	var prevHash string
	if pos > 0 {
		prevHash = nodeDigest(s.execTrace[pos-1])
	}
	node := TraceNode{
		PrevNodeHash:  prevHash,
		EventHash:     eventHash,
		EncodedOutput: EncodeValue(output),
		EncodedState:  encodedState,
	}
	s.execTrace = append(s.execTrace, node)
	s.cachedTrace = append(s.cachedTrace, node)
	s.dirty = true
	autoCheckpoint := s.autoCheckpoint
	s.mu.Unlock()

	if autoCheckpoint {
		if cerr := s.Checkpoint(); cerr != nil {
			return output, cerr
		}
	}
	return output, nil
}

// simState is the JSON shape of a full simulation snapshot: every known
// agent's and world's own EncodeCompleteState, keyed by name.
type simState struct {
	Agents map[string]map[string]any `json:"agents,omitempty"`
	Worlds map[string]map[string]any `json:"worlds,omitempty"`
}

// encodeStateLocked snapshots every agent and world the simulation knows
// about. Callers must hold s.mu.
func (s *Simulation) encodeStateLocked() (json.RawMessage, error) {
	st := simState{Agents: map[string]map[string]any{}, Worlds: map[string]map[string]any{}}

	if s.agents != nil {
		for _, name := range s.agents.List() {
			a, ok := s.agents.Get(name)
			if !ok {
				continue
			}
			enc, err := a.EncodeCompleteState()
			if err != nil {
				return nil, fmt.Errorf("agent %q: %w", name, err)
			}
			st.Agents[name] = enc
		}
	}

	if s.worlds != nil {
		for _, wname := range s.worlds.List() {
			w, ok := s.worlds.Get(wname)
			if !ok {
				continue
			}
			enc, err := w.EncodeCompleteState()
			if err != nil {
				return nil, fmt.Errorf("world %q: %w", wname, err)
			}
			st.Worlds[wname] = enc

			for _, a := range w.Agents() {
				if _, already := st.Agents[a.Name()]; already {
					continue
				}
				aenc, err := a.EncodeCompleteState()
				if err != nil {
					return nil, fmt.Errorf("agent %q: %w", a.Name(), err)
				}
				st.Agents[a.Name()] = aenc
			}
		}
	}

	return json.Marshal(st)
}

// decodeState restores a previously-encoded snapshot into the live
// registries. Per spec.md §7, a named agent/world missing from the live
// registries is a fatal cache decode error — the caller must have
// constructed and registered the same objects the recorded run had.
func (s *Simulation) decodeState(raw json.RawMessage) error {
	var st simState
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("simulation: decoding state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, enc := range st.Agents {
		a, ok := s.findAgentLocked(name)
		if !ok {
			return fmt.Errorf("simulation: decoding state: agent %q not present in live registries", name)
		}
		if err := a.DecodeCompleteState(enc); err != nil {
			return fmt.Errorf("simulation: decoding agent %q: %w", name, err)
		}
	}
	for name, enc := range st.Worlds {
		w, ok := s.findWorldLocked(name)
		if !ok {
			return fmt.Errorf("simulation: decoding state: world %q not present in live registries", name)
		}
		if err := w.DecodeCompleteState(enc); err != nil {
			return fmt.Errorf("simulation: decoding world %q: %w", name, err)
		}
	}
	return nil
}

// decodeOutput resolves a trace node's encoded output back into a live
// value: an agent/world reference is looked up by name in the live
// registries; a JSON envelope is unmarshaled into a plain any (the
// generic map/slice/scalar shape encoding/json produces for an unknown
// target type).
func (s *Simulation) decodeOutput(ev EncodedValue) (any, error) {
	switch ev.Type {
	case encodedKindAgentRef:
		s.mu.Lock()
		a, ok := s.findAgentLocked(ev.Name)
		s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("simulation: decoding output: agent %q not present in live registries", ev.Name)
		}
		return a, nil
	case encodedKindWorldRef:
		s.mu.Lock()
		w, ok := s.findWorldLocked(ev.Name)
		s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("simulation: decoding output: world %q not present in live registries", ev.Name)
		}
		return w, nil
	default:
		if len(ev.Value) == 0 || string(ev.Value) == "null" {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal(ev.Value, &out); err != nil {
			return nil, fmt.Errorf("simulation: decoding output: %w", err)
		}
		return out, nil
	}
}
