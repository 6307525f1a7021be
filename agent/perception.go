package agent

import "github.com/kadirpekel/troupe/memory"

// Listen perceives a CONVERSATION stimulus (speech) from an optional
// source agent name.
func (a *Agent) Listen(speech, source string) error {
	_, err := a.transact("Listen", map[string]any{"speech": speech, "source": source}, func() (any, error) {
		return nil, a.storeStimulus(memory.StimulusConversation, speech, source)
	})
	return err
}

// See perceives a VISUAL stimulus describing something observed.
func (a *Agent) See(description, source string) error {
	_, err := a.transact("See", map[string]any{"description": description, "source": source}, func() (any, error) {
		return nil, a.storeStimulus(memory.StimulusVisual, description, source)
	})
	return err
}

// Socialize perceives a SOCIAL stimulus, typically describing a change
// in the agent's accessibility graph.
func (a *Agent) Socialize(description, source string) error {
	_, err := a.transact("Socialize", map[string]any{"description": description, "source": source}, func() (any, error) {
		return nil, a.storeStimulus(memory.StimulusSocial, description, source)
	})
	return err
}

// Think perceives a THOUGHT stimulus, self-sourced. Faculties use this to
// inject their findings (retrieved snippets, document contents, tool
// results) back into the agent's episodic memory.
func (a *Agent) Think(text string) error {
	_, err := a.transact("Think", map[string]any{"text": text}, func() (any, error) {
		return nil, a.storeStimulus(memory.StimulusThought, text, "")
	})
	return err
}

// InternalizeGoal perceives an INTERNAL_GOAL_FORMULATION stimulus and
// folds it into the persona's current goals, requiring a prompt reset.
func (a *Agent) InternalizeGoal(text string) error {
	_, err := a.transact("InternalizeGoal", map[string]any{"text": text}, func() (any, error) {
		if err := a.storeStimulus(memory.StimulusInternalGoal, text, ""); err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.persona.CurrentGoals = append(a.persona.CurrentGoals, text)
		a.resetPrompt()
		a.mu.Unlock()
		return nil, nil
	})
	return err
}

func (a *Agent) storeStimulus(kind memory.StimulusKind, content, source string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.episodic.Store(memory.EpisodicEvent{
		Role:                memory.RoleUser,
		Content:             content,
		SimulationTimestamp: a.currentTimestamp(),
		Stimuli:             []memory.Stimulus{{Type: kind, Content: content, Source: source}},
	})
	return nil
}
