package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandTool executes allow-listed shell commands, matching the teacher's
// sandboxed CommandTool: base-command allow list, working directory, and
// a hard execution timeout.
type CommandTool struct {
	allowedCommands  []string
	workingDirectory string
	maxExecutionTime time.Duration
}

// NewCommandTool constructs a CommandTool. A nil/empty allowedCommands
// falls back to a small read-only default set.
func NewCommandTool(allowedCommands []string, workingDirectory string, maxExecutionTime time.Duration) *CommandTool {
	if len(allowedCommands) == 0 {
		allowedCommands = []string{"cat", "head", "tail", "ls", "find", "grep", "wc", "pwd", "echo", "date"}
	}
	if workingDirectory == "" {
		workingDirectory = "."
	}
	if maxExecutionTime <= 0 {
		maxExecutionTime = 30 * time.Second
	}
	return &CommandTool{allowedCommands: allowedCommands, workingDirectory: workingDirectory, maxExecutionTime: maxExecutionTime}
}

func (t *CommandTool) Name() string { return "execute_command" }
func (t *CommandTool) Description() string {
	return "Execute an allow-listed shell command and return its combined output"
}
func (t *CommandTool) ActionType() string            { return "EXECUTE_COMMAND" }
func (t *CommandTool) Claims(actionType string) bool { return actionType == "EXECUTE_COMMAND" }

// Execute validates the command's base executable against the allow list,
// then runs it through a shell with a timeout.
func (t *CommandTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	command, _ := args["command"].(string)
	if command == "" {
		return errorResult(t.Name(), "command is required", fmt.Errorf("command parameter is required"))
	}

	workingDir, _ := args["working_dir"].(string)
	if workingDir == "" {
		workingDir = t.workingDirectory
	}

	base := extractBaseCommand(command)
	if !t.isAllowed(base) {
		err := fmt.Errorf("command not allowed: %s", base)
		return errorResult(t.Name(), err.Error(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.maxExecutionTime)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workingDir

	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	result := Result{
		Success:       err == nil,
		Content:       string(output),
		ToolName:      t.Name(),
		ExecutionTime: elapsed,
		Metadata:      map[string]any{"command": command, "working_dir": workingDir},
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result, err
}

func extractBaseCommand(command string) string {
	parts := strings.FieldsFunc(command, func(r rune) bool {
		return r == '|' || r == '>' || r == '<' || r == ';'
	})
	if len(parts) == 0 {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(parts[0]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (t *CommandTool) isAllowed(base string) bool {
	for _, allowed := range t.allowedCommands {
		if base == allowed {
			return true
		}
	}
	return false
}

var _ Tool = (*CommandTool)(nil)
