package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/observability"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// MCPExecutor offers the tools of several MCP servers as one
// tools.ToolExecutor. When two servers offer the same tool name the
// earlier one wins.
type MCPExecutor struct {
	clients []*MCPClient

	mu     sync.RWMutex
	routes map[string]*MCPClient
	defs   []api.ToolDefinition
	synced bool
}

var _ tools.ToolExecutor = (*MCPExecutor)(nil)

// NewMCPExecutor creates an MCPExecutor over connected clients.
func NewMCPExecutor(clients ...*MCPClient) *MCPExecutor {
	return &MCPExecutor{clients: clients, routes: make(map[string]*MCPClient)}
}

// Connect dials every server in cfg and discovers its tools. Servers that
// fail to connect are skipped with a warning; the error joins their
// failures and is returned alongside a usable executor.
func Connect(ctx context.Context, cfg Config) (*MCPExecutor, error) {
	var (
		clients []*MCPClient
		errs    []error
	)
	for _, sc := range cfg.Servers {
		c := NewMCPClient(sc)
		err := connectOne(ctx, c, cfg.connectTimeout())
		if err != nil {
			slog.Warn("skipping MCP server", "server", sc.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		clients = append(clients, c)
	}

	e := NewMCPExecutor(clients...)
	e.Discover(ctx)
	return e, errors.Join(errs...)
}

// connectOne dials c within timeout. An SSE session reads its event
// stream on the dial context for its whole life, so only streamable
// transports get the bound.
func connectOne(ctx context.Context, c *MCPClient, timeout time.Duration) error {
	if c.cfg.Transport == TransportSSE {
		return c.Connect(ctx)
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Connect(dialCtx)
}

// Kind returns ToolKindMCP.
func (e *MCPExecutor) Kind() tools.ToolKind {
	return tools.ToolKindMCP
}

// CanExecute reports whether a connected server offers toolName.
func (e *MCPExecutor) CanExecute(toolName string) bool {
	e.Discover(context.Background())

	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.routes[toolName]
	return ok
}

// Execute routes call to the server that offers it.
func (e *MCPExecutor) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	e.Discover(ctx)

	e.mu.RLock()
	client, ok := e.routes[call.Name]
	e.mu.RUnlock()
	if !ok {
		return tools.ErrorResult(call.ID, fmt.Sprintf("no MCP server provides tool %q", call.Name)), nil
	}

	result, err := client.CallTool(ctx, call)

	status := "success"
	if err != nil {
		status = "error"
	} else if result.IsError {
		status = "tool_error"
	}
	observability.ToolExecutionsTotal.WithLabelValues(call.Name, status).Inc()

	return result, err
}

// DiscoveredTools returns the routed tools in server order, each name
// once.
func (e *MCPExecutor) DiscoveredTools() []api.ToolDefinition {
	e.Discover(context.Background())

	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]api.ToolDefinition(nil), e.defs...)
}

// Close ends every session and joins the errors.
func (e *MCPExecutor) Close() error {
	var errs []error
	for _, client := range e.clients {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close MCP client", "server", client.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", client.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Discover rebuilds the routing table when it was never built or a server
// announced a tool list change. A server whose listing fails contributes
// no tools until the next rebuild.
func (e *MCPExecutor) Discover(ctx context.Context) {
	if e.inSync() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.synced && !e.anyStale() {
		return
	}

	routes := make(map[string]*MCPClient)
	var defs []api.ToolDefinition
	for _, client := range e.clients {
		toolDefs, err := client.DiscoverTools(ctx)
		if err != nil {
			slog.Error("failed to discover tools from MCP server", "server", client.Name(), "error", err)
			continue
		}
		for _, td := range toolDefs {
			if existing, ok := routes[td.Name]; ok {
				slog.Warn("duplicate MCP tool name, using first provider",
					"tool", td.Name,
					"winner", existing.Name(),
					"loser", client.Name(),
				)
				continue
			}
			routes[td.Name] = client
			defs = append(defs, td)
		}
		slog.Info("discovered MCP tools", "server", client.Name(), "count", len(toolDefs))
	}

	e.routes, e.defs, e.synced = routes, defs, true
}

func (e *MCPExecutor) inSync() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.synced && !e.anyStale()
}

func (e *MCPExecutor) anyStale() bool {
	for _, c := range e.clients {
		if c.stale.Load() {
			return true
		}
	}
	return false
}
