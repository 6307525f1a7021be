package agent

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kadirpekel/troupe/config"
	"github.com/kadirpekel/troupe/memory"
)

// spec is the JSON-serializable shape of an agent, matching spec.md §6's
// "Agent spec" persisted-state description: name, episodic_memory,
// semantic_memory (document names only — vectors stay in the database),
// mental_faculties (names only), and configuration.
type spec struct {
	Name            string                 `json:"name"`
	Configuration   config.PersonaConfig   `json:"configuration"`
	EpisodicMemory  []memory.EpisodicEvent `json:"episodic_memory,omitempty"`
	DocumentNames   []string               `json:"semantic_memory,omitempty"`
	MentalFaculties []string               `json:"mental_faculties,omitempty"`
}

// EncodeCompleteState returns every serializable attribute of the agent
// as a plain dict, suitable for round-tripping through JSON in a
// transaction's state snapshot.
func (a *Agent) EncodeCompleteState() (map[string]any, error) {
	a.mu.Lock()
	s := spec{
		Name:            a.name,
		Configuration:   *a.persona,
		EpisodicMemory:  a.episodic.RetrieveAll(),
		MentalFaculties: facultyNames(a.faculties),
	}
	if a.semantic != nil {
		s.DocumentNames = a.semantic.ListDocumentsNames()
	}
	a.mu.Unlock()

	return toMap(s)
}

// DecodeCompleteState restores the agent's persona configuration and
// episodic memory from a previously-encoded state. Faculties and
// semantic memory are not reconstructed from the spec — they are wired
// at construction time — so only their names are round-tripped for
// inspection.
func (a *Agent) DecodeCompleteState(state map[string]any) error {
	var s spec
	if err := fromMap(state, &s); err != nil {
		return fmt.Errorf("agent: decoding state: %w", err)
	}
	if s.Name == "" {
		return fmt.Errorf("agent: decoded state missing name")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = s.Name
	a.persona = &s.Configuration
	a.episodic = memory.NewEpisodicMemory(0, 0)
	for _, e := range s.EpisodicMemory {
		if !e.IsOmissionMarker() {
			a.episodic.Store(e)
		}
	}
	// currently_accessible_agents is the authoritative list; rebuild the
	// edge map from it so IsAccessible/AccessibleAgentNames stay correct
	// after a transactional replay. The per-edge description is lost —
	// restoring it would require encoding the whole accessible map, which
	// spec.md's "Agent spec" shape does not carry.
	a.accessible = make(map[string]accessibleAgent, len(s.Configuration.CurrentlyAccessibleAgents))
	for _, name := range s.Configuration.CurrentlyAccessibleAgents {
		a.accessible[name] = accessibleAgent{Name: name, Description: "restored from decoded state"}
	}
	a.resetPrompt()
	return nil
}

// SaveSpec writes the agent's complete state to path as JSON.
func (a *Agent) SaveSpec(path string) error {
	state, err := a.EncodeCompleteState()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("agent: marshaling spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("agent: writing spec %q: %w", path, err)
	}
	return nil
}

// LoadSpec reads a previously-saved spec file and restores it into this
// agent.
func (a *Agent) LoadSpec(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("agent: reading spec %q: %w", path, err)
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("agent: parsing spec %q: %w", path, err)
	}
	return a.DecodeCompleteState(state)
}

func facultyNames(faculties []Faculty) []string {
	if len(faculties) == 0 {
		return nil
	}
	names := make([]string, len(faculties))
	for i, f := range faculties {
		names[i] = f.Name()
	}
	return names
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("agent: marshaling state: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("agent: unmarshaling state: %w", err)
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
