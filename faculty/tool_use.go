package faculty

import (
	"context"
	"fmt"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/memory"
	"github.com/kadirpekel/troupe/tools"
)

// ToolUse delegates actions to an ordered set of tool plugins, returning
// true on the first tool that claims the action's kind.
type ToolUse struct {
	tools *tools.Set
}

// NewToolUse constructs a ToolUse faculty backed by set.
func NewToolUse(set *tools.Set) *ToolUse {
	return &ToolUse{tools: set}
}

func (t *ToolUse) Name() string { return "tool_use" }

func (t *ToolUse) ProcessAction(ctx context.Context, host agent.ActionHost, action memory.Action) (bool, error) {
	if t.tools == nil {
		return false, nil
	}

	for _, tool := range t.tools.All() {
		if !tool.Claims(string(action.Type)) {
			continue
		}

		args, ok := action.ContentMap()
		if !ok {
			args = map[string]any{"content": action.ContentString()}
		}
		if action.Target != "" {
			if _, exists := args["target"]; !exists {
				args["target"] = action.Target
			}
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return true, host.Think(fmt.Sprintf("Tool %s failed: %v", tool.Name(), result.Error))
		}
		return true, host.Think(fmt.Sprintf("Tool %s succeeded: %s", tool.Name(), result.Content))
	}
	return false, nil
}

func (t *ToolUse) ActionsDefinitionsPrompt() string {
	if t.tools == nil {
		return ""
	}
	s := "- Tools available to you. To use one, emit an action whose type is its action kind:\n"
	for _, tool := range t.tools.All() {
		s += fmt.Sprintf("  - %s (action type %s): %s\n", tool.Name(), tool.ActionType(), tool.Description())
	}
	return s
}

func (t *ToolUse) ActionsConstraintsPrompt() string {
	return `- Only invoke a tool's action kind when you intend its side effect to actually happen.`
}

var _ agent.Faculty = (*ToolUse)(nil)
