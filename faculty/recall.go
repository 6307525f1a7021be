// Package faculty provides the three core capability plug-ins an Agent
// can carry: Recall (semantic-memory query), FilesAndWebGrounding
// (document listing and lookup), and ToolUse (delegation to tool
// plugins). Each both extends the action grammar and reacts to the
// matching action kind.
package faculty

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/memory"
)

// DefaultRecallTopK bounds how many snippets a RECALL action retrieves.
const DefaultRecallTopK = 5

// ActionRecall is the action kind Recall handles: query semantic memory
// with the action's content and inject the results as a THINK stimulus.
const ActionRecall memory.ActionKind = "RECALL"

// Recall queries an agent's semantic memory on RECALL actions.
type Recall struct {
	TopK int
}

// NewRecall constructs a Recall faculty retrieving topK snippets per
// query; topK <= 0 falls back to DefaultRecallTopK.
func NewRecall(topK int) *Recall {
	if topK <= 0 {
		topK = DefaultRecallTopK
	}
	return &Recall{TopK: topK}
}

func (r *Recall) Name() string { return "recall" }

func (r *Recall) ProcessAction(ctx context.Context, host agent.ActionHost, action memory.Action) (bool, error) {
	if action.Type != ActionRecall {
		return false, nil
	}

	query := action.ContentString()
	sem := host.SemanticMemory()
	if sem == nil {
		return true, host.Think("Recall is not available: no semantic memory is configured.")
	}

	snippets, err := sem.RetrieveRelevant(ctx, query, r.TopK)
	if err != nil {
		return true, host.Think(fmt.Sprintf("Recall failed: %v", err))
	}
	if len(snippets) == 0 {
		return true, host.Think(fmt.Sprintf("Nothing relevant was found for %q.", query))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recalled, relevant to %q:\n", query)
	for _, s := range snippets {
		fmt.Fprintf(&b, "- (%s, score %.3f) %s\n", s.SourceName, s.Score, s.Content)
	}
	return true, host.Think(b.String())
}

func (r *Recall) ActionsDefinitionsPrompt() string {
	return `- RECALL: search your semantic memory for content relevant to a query. content = the query string.`
}

func (r *Recall) ActionsConstraintsPrompt() string {
	return `- Use RECALL when you need to remember something from ingested documents or pages rather than guessing.`
}

var _ agent.Faculty = (*Recall)(nil)
