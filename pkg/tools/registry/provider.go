// Package registry hosts the built-in tools that run in-process. Each
// FunctionProvider contributes one or more tools; FunctionRegistry
// routes calls to them by tool name and implements tools.ToolExecutor,
// so the engine and the MCP server treat built-ins like any other tool
// source.
package registry

import (
	"context"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// FunctionProvider is a built-in tool source. Calls are routed by the
// names returned from Tools, which must not change after registration.
type FunctionProvider interface {
	Name() string
	Tools() []api.ToolDefinition
	Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error)
	Close() error
}
