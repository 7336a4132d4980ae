package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/observability"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

var builtinToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "dataagent_builtin_tool_duration_seconds",
		Help:    "Built-in tool execution duration",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	},
	[]string{"provider", "tool_name"},
)

func init() {
	prometheus.MustRegister(builtinToolDuration)
}

// route binds a tool name to the provider that serves it.
type route struct {
	def      api.ToolDefinition
	provider FunctionProvider
}

// FunctionRegistry implements tools.ToolExecutor over registered
// providers. The first provider to claim a tool name keeps it.
type FunctionRegistry struct {
	mu        sync.RWMutex
	providers []FunctionProvider
	routes    map[string]route
	order     []string
}

var _ tools.ToolExecutor = (*FunctionRegistry)(nil)

// New creates an empty FunctionRegistry.
func New() *FunctionRegistry {
	return &FunctionRegistry{routes: make(map[string]route)}
}

// Register adds p and claims its tools. It returns how many tools were
// claimed; names already held by an earlier provider are skipped with a
// warning.
func (r *FunctionRegistry) Register(p FunctionProvider) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)

	claimed := 0
	for _, td := range p.Tools() {
		if existing, ok := r.routes[td.Name]; ok {
			slog.Warn("builtin tool name conflict, keeping first provider",
				"tool", td.Name,
				"winner", existing.provider.Name(),
				"loser", p.Name(),
			)
			continue
		}
		r.routes[td.Name] = route{def: td, provider: p}
		r.order = append(r.order, td.Name)
		claimed++
	}

	slog.Debug("registered builtin provider", "provider", p.Name(), "tools", claimed)
	return claimed
}

// Kind returns ToolKindBuiltin.
func (r *FunctionRegistry) Kind() tools.ToolKind {
	return tools.ToolKindBuiltin
}

// CanExecute reports whether a registered provider claimed toolName.
func (r *FunctionRegistry) CanExecute(toolName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[toolName]
	return ok
}

// Execute runs call on the provider that claimed its name. A panic in the
// provider becomes an error result. A result without a call ID gets the
// call's.
func (r *FunctionRegistry) Execute(ctx context.Context, call tools.ToolCall) (result *tools.ToolResult, err error) {
	r.mu.RLock()
	rt, ok := r.routes[call.Name]
	r.mu.RUnlock()

	if !ok {
		return tools.ErrorResult(call.ID, fmt.Sprintf("no builtin provider handles tool %q", call.Name)), nil
	}

	providerName := rt.provider.Name()
	start := time.Now()
	status := "success"

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("builtin tool provider panicked",
				"provider", providerName,
				"tool", call.Name,
				"panic", rec,
			)
			result = tools.ErrorResult(call.ID, fmt.Sprintf("internal error: builtin tool %q panicked", call.Name))
			err = nil
			status = "panic"
		}
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, status).Inc()
		builtinToolDuration.WithLabelValues(providerName, call.Name).Observe(time.Since(start).Seconds())
	}()

	debug.Log("tools", "builtin tool call", "tool", call.Name, "args", debug.Truncate(call.Arguments, 200))

	result, err = rt.provider.Execute(ctx, call)
	switch {
	case err != nil:
		status = "error"
	case result == nil:
		result = tools.ErrorResult(call.ID, fmt.Sprintf("builtin tool %q returned no result", call.Name))
		status = "tool_error"
	case result.IsError:
		status = "tool_error"
	}
	if result != nil && result.CallID == "" {
		result.CallID = call.ID
	}
	return result, err
}

// DiscoveredTools returns the claimed tool definitions in registration
// order.
func (r *FunctionRegistry) DiscoveredTools() []api.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]api.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.routes[name].def)
	}
	return defs
}

// Close closes every provider and joins their errors.
func (r *FunctionRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			slog.Warn("failed to close builtin provider", "provider", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
