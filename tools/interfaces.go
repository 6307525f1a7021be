// Package tools provides the plugin implementations the Tool Use faculty
// delegates to: local command execution, file writing, search-and-replace
// editing, and the word processor and calendar tools that back the
// WRITE_DOCUMENT and SCHEDULE action kinds.
package tools

import (
	"context"
	"time"
)

// Result is the outcome of executing one tool call.
type Result struct {
	Success       bool
	Content       string
	Error         string
	ToolName      string
	ExecutionTime time.Duration
	Metadata      map[string]any
}

// Tool is the common interface every plugin implements. The Tool Use
// faculty holds an ordered list of Tools and offers each one, in order,
// the chance to claim an action.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]any) (Result, error)

	// Claims reports whether this tool is the one that handles actionType
	// (e.g. WRITE_DOCUMENT for the word processor). The Tool Use faculty
	// uses this to route before calling Execute.
	Claims(actionType string) bool

	// ActionType returns the action kind this tool claims (e.g.
	// WRITE_DOCUMENT), so the faculty can advertise it in the actions
	// definitions prompt alongside the tool's name and description.
	ActionType() string
}

func errorResult(name, message string, err error) (Result, error) {
	return Result{Success: false, ToolName: name, Error: message}, err
}

func okResult(name, content string, metadata map[string]any) (Result, error) {
	return Result{Success: true, ToolName: name, Content: content, Metadata: metadata}, nil
}
