package world

import (
	"context"
	"fmt"
	"time"

	"github.com/kadirpekel/troupe/memory"
)

// Run advances the world steps times, each by timedeltaPerStep (zero
// means no clock advance), visiting every agent once per step in
// insertion order: act until done, then dispatch its pending actions.
// When returnActions is true, the actions emitted by each agent at each
// step are returned as results[step][agentIndex].
func (w *World) Run(ctx context.Context, steps int, timedeltaPerStep time.Duration, returnActions bool) ([][][]memory.Action, error) {
	var results [][][]memory.Action
	if returnActions {
		results = make([][][]memory.Action, 0, steps)
	}
	for s := 0; s < steps; s++ {
		stepActions, err := w.Step(ctx, timedeltaPerStep, returnActions)
		if err != nil {
			return results, fmt.Errorf("world: step %d: %w", s, err)
		}
		if returnActions {
			results = append(results, stepActions)
		}
	}
	return results, nil
}

// Skip advances the clock by steps * timedeltaPerStep without polling any
// agent. Unlike Step, no agent-level call happens inside Skip to carry a
// state snapshot, so Skip wraps itself in a transaction directly.
func (w *World) Skip(steps int, timedeltaPerStep time.Duration) {
	_, _ = w.transact("Skip", map[string]any{"steps": steps, "timedelta": timedeltaPerStep}, func() (any, error) {
		w.clock = w.clock.Add(time.Duration(steps) * timedeltaPerStep)
		return nil, nil
	})
}

// Step advances the clock once, then visits every agent once: act until
// done, drain its pending actions, and dispatch each.
func (w *World) Step(ctx context.Context, timedelta time.Duration, returnActions bool) ([][]memory.Action, error) {
	if timedelta > 0 {
		w.clock = w.clock.Add(timedelta)
	}

	if w.socialNetwork != nil {
		w.updateAgentsContexts()
	}

	var allActions [][]memory.Action
	if returnActions {
		allActions = make([][]memory.Action, 0, len(w.order))
	}

	for _, a := range w.order {
		actions, err := a.Act(ctx, true, 0, true)
		if err != nil {
			return allActions, fmt.Errorf("world: agent %q act: %w", a.Name(), err)
		}
		if returnActions {
			allActions = append(allActions, actions)
		}

		pending := a.DrainPendingActions()
		for _, act := range pending {
			if err := w.dispatch(a.Name(), act); err != nil {
				return allActions, fmt.Errorf("world: dispatching %s action from %q: %w", act.Type, a.Name(), err)
			}
		}
	}
	return allActions, nil
}

// updateAgentsContexts resets every agent's accessibility, then re-grants
// it exactly for pairs sharing a relation. Runs at the head of every step
// in social-network mode.
func (w *World) updateAgentsContexts() {
	for _, a := range w.order {
		_ = a.MakeAllAgentsInaccessible()
	}
	for _, a := range w.order {
		for _, peerName := range w.socialNetwork.peersOf(a.Name()) {
			peer, ok := w.GetAgentByName(peerName)
			if !ok {
				continue
			}
			_ = a.MakeAgentAccessible(peer, "connected via social network")
		}
	}
}

// dispatch handles the two action kinds the World interprets itself.
// Every other kind is assumed already handled inside the agent via a
// faculty and has no environment-level effect.
func (w *World) dispatch(senderName string, action memory.Action) error {
	switch action.Type {
	case memory.ActionReachOut:
		return w.dispatchReachOut(senderName, action)
	case memory.ActionTalk:
		return w.dispatchTalk(senderName, action)
	default:
		return nil
	}
}

func (w *World) dispatchReachOut(senderName string, action memory.Action) error {
	sender, ok := w.GetAgentByName(senderName)
	if !ok {
		return fmt.Errorf("world: unknown sender %q", senderName)
	}
	target, ok := w.GetAgentByName(action.Target)
	if !ok {
		return sender.Socialize(fmt.Sprintf("%s is not a known agent.", action.Target), "")
	}

	if w.socialNetwork != nil && !w.socialNetwork.connected(senderName, action.Target) {
		return sender.Socialize(fmt.Sprintf("%s is not in the same social network relation as you.", target.Name()), "")
	}

	if err := sender.MakeAgentAccessible(target, "reached out"); err != nil {
		return err
	}
	if err := target.MakeAgentAccessible(sender, "reached out to you"); err != nil {
		return err
	}
	if err := sender.Socialize(fmt.Sprintf("You are now able to interact with %s.", target.Name()), ""); err != nil {
		return err
	}
	return target.Socialize(fmt.Sprintf("%s reached out to you; you can now interact with them.", sender.Name()), "")
}

func (w *World) dispatchTalk(senderName string, action memory.Action) error {
	if action.Target != "" {
		target, ok := w.GetAgentByName(action.Target)
		if ok {
			return target.Listen(action.ContentString(), senderName)
		}
	}
	if w.broadcastIfNoTarget {
		return w.Broadcast(action.ContentString(), senderName)
	}
	return nil
}
