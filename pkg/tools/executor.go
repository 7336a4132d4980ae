package tools

import (
	"context"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// ToolKind classifies how a tool is hosted and executed.
type ToolKind int

const (
	// ToolKindBuiltin is a tool executed in-process by a registered
	// FunctionProvider.
	ToolKindBuiltin ToolKind = iota

	// ToolKindMCP is a tool connected via the Model Context Protocol.
	// The engine calls the MCP server from within the tool-call loop.
	ToolKindMCP
)

// String returns the kind name used in logs.
func (k ToolKind) String() string {
	switch k {
	case ToolKindBuiltin:
		return "builtin"
	case ToolKindMCP:
		return "mcp"
	default:
		return "unknown"
	}
}

// ToolExecutor executes tool calls. Implementations must be safe for
// concurrent use; the engine runs the calls of one turn in parallel.
type ToolExecutor interface {
	// Kind returns the type of tools this executor handles.
	Kind() ToolKind

	// CanExecute checks if this executor can handle the given tool name.
	CanExecute(toolName string) bool

	// Execute runs the tool and returns the result. Tool-level failures
	// are reported through ToolResult.IsError; a returned error means the
	// executor itself failed.
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)

	// DiscoveredTools returns the definitions offered to the generator.
	DiscoveredTools() []api.ToolDefinition
}

// ToolCall represents a model's request to invoke a tool.
type ToolCall struct {
	// ID is the unique call identifier (from the model, e.g., "call_abc123").
	ID string

	// Name is the tool function name.
	Name string

	// Arguments is the JSON-encoded arguments string.
	Arguments string
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	// CallID matches the originating ToolCall.ID.
	CallID string

	// Output is the tool output content fed back to the generator.
	Output string

	// IsError indicates that the output is an error message.
	IsError bool

	// Dataset is the table produced by the call, if any. The engine injects
	// the last one into the sandbox.
	Dataset *api.Dataset
}

// ErrorResult builds an error ToolResult for call.
func ErrorResult(callID, message string) *ToolResult {
	return &ToolResult{CallID: callID, Output: message, IsError: true}
}
