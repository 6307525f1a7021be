package agent

import "github.com/kadirpekel/troupe/memory"

// MakeAgentAccessible grants other as a valid TALK/REACH_OUT target,
// recording description and syncing the persona's
// currently_accessible_agents list.
func (a *Agent) MakeAgentAccessible(other *Agent, description string) error {
	_, err := a.transact("MakeAgentAccessible", map[string]any{"other": other.Name(), "description": description}, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.accessible[other.Name()] = accessibleAgent{Name: other.Name(), Description: description}
		a.persona.CurrentlyAccessibleAgents = a.sortedAccessibleNames()
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// MakeAgentInaccessible revokes otherName as a valid TALK/REACH_OUT
// target.
func (a *Agent) MakeAgentInaccessible(otherName string) error {
	_, err := a.transact("MakeAgentInaccessible", otherName, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.accessible, otherName)
		a.persona.CurrentlyAccessibleAgents = a.sortedAccessibleNames()
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// MakeAllAgentsInaccessible clears the entire accessibility graph.
func (a *Agent) MakeAllAgentsInaccessible() error {
	_, err := a.transact("MakeAllAgentsInaccessible", nil, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.accessible = make(map[string]accessibleAgent)
		a.persona.CurrentlyAccessibleAgents = nil
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// IsAccessible reports whether name is currently a valid TALK/REACH_OUT
// target for this agent.
func (a *Agent) IsAccessible(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.accessible[name]
	return ok
}

// AccessibleAgentNames returns the agent's current accessibility edges,
// sorted.
func (a *Agent) AccessibleAgentNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedAccessibleNames()
}

// MoveTo relocates the agent and replaces its current context.
func (a *Agent) MoveTo(location string, context []string) error {
	_, err := a.transact("MoveTo", map[string]any{"location": location, "context": context}, func() (any, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.persona.CurrentLocation = location
		a.persona.CurrentContext = context
		a.resetPrompt()
		return nil, nil
	})
	return err
}

// ChangeContext replaces the agent's current context and perceives a
// THOUGHT stimulus announcing the change, so the next act loop sees it.
func (a *Agent) ChangeContext(context []string) error {
	_, err := a.transact("ChangeContext", context, func() (any, error) {
		a.mu.Lock()
		a.persona.CurrentContext = context
		a.resetPrompt()
		a.mu.Unlock()
		return nil, a.storeStimulus(memory.StimulusThought, "The current context has changed.", "")
	})
	return err
}
