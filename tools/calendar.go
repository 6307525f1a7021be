package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// CalendarEntry is one scheduled item recorded by CalendarTool.
type CalendarEntry struct {
	When  string
	Title string
}

// CalendarTool backs a supplemented SCHEDULE action kind: agents can ask to
// be reminded of something at a given simulated time. It keeps entries
// in-process, per agent name, sorted by insertion order.
type CalendarTool struct {
	mu      sync.Mutex
	entries map[string][]CalendarEntry
}

// NewCalendarTool constructs an empty CalendarTool.
func NewCalendarTool() *CalendarTool {
	return &CalendarTool{entries: make(map[string][]CalendarEntry)}
}

func (t *CalendarTool) Name() string                 { return "calendar" }
func (t *CalendarTool) Description() string           { return "Record a scheduled item for an agent" }
func (t *CalendarTool) ActionType() string            { return "SCHEDULE" }
func (t *CalendarTool) Claims(actionType string) bool { return actionType == "SCHEDULE" }

func (t *CalendarTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	agentName, _ := args["agent"].(string)
	when, _ := args["when"].(string)
	title, _ := args["title"].(string)
	if agentName == "" || title == "" {
		err := fmt.Errorf("agent and title are required")
		return errorResult(t.Name(), err.Error(), err)
	}

	t.mu.Lock()
	t.entries[agentName] = append(t.entries[agentName], CalendarEntry{When: when, Title: title})
	t.mu.Unlock()

	return okResult(t.Name(), fmt.Sprintf("scheduled %q at %q for %s", title, when, agentName),
		map[string]any{"agent": agentName, "when": when, "title": title})
}

// EntriesFor returns the scheduled entries for agentName, in insertion
// order.
func (t *CalendarTool) EntriesFor(agentName string) []CalendarEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CalendarEntry, len(t.entries[agentName]))
	copy(out, t.entries[agentName])
	return out
}

// AgentNames returns every agent with at least one scheduled entry, sorted.
func (t *CalendarTool) AgentNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ Tool = (*CalendarTool)(nil)
