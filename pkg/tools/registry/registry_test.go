package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/observability"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// mockProvider implements FunctionProvider for testing.
type mockProvider struct {
	name     string
	toolDefs []api.ToolDefinition
	execFn   func(context.Context, tools.ToolCall) (*tools.ToolResult, error)
	closeErr error
	closed   bool
}

func (m *mockProvider) Name() string                { return m.name }
func (m *mockProvider) Tools() []api.ToolDefinition { return m.toolDefs }

func (m *mockProvider) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if m.execFn != nil {
		return m.execFn(ctx, call)
	}
	return &tools.ToolResult{CallID: call.ID, Output: "default"}, nil
}

func (m *mockProvider) Close() error {
	m.closed = true
	return m.closeErr
}

var _ FunctionProvider = (*mockProvider)(nil)

func toolCounter(t *testing.T, tool, status string) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := observability.ToolExecutionsTotal.WithLabelValues(tool, status).Write(m); err != nil {
		t.Fatalf("reading metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRegistry_DiscoverTools(t *testing.T) {
	reg := New()
	reg.Register(&mockProvider{
		name: "test-provider",
		toolDefs: []api.ToolDefinition{
			{Type: "function", Name: "tool_a", Description: "Tool A"},
			{Type: "function", Name: "tool_b", Description: "Tool B"},
		},
	})

	discovered := reg.DiscoveredTools()
	if len(discovered) != 2 {
		t.Fatalf("DiscoveredTools() returned %d tools, want 2", len(discovered))
	}
	if discovered[0].Name != "tool_a" || discovered[1].Name != "tool_b" {
		t.Errorf("unexpected order %v", discovered)
	}
	if !reg.CanExecute("tool_a") || reg.CanExecute("tool_c") {
		t.Error("CanExecute does not match registered tools")
	}
	if reg.Kind() != tools.ToolKindBuiltin {
		t.Errorf("Kind() = %v, want builtin", reg.Kind())
	}
}

func TestRegistry_Execute(t *testing.T) {
	ds := &api.Dataset{Columns: []string{"x"}, Data: []map[string]any{{"x": int64(1)}}}
	reg := New()
	reg.Register(&mockProvider{
		name:     "data",
		toolDefs: []api.ToolDefinition{{Type: "function", Name: "registry_exec_ok"}},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return &tools.ToolResult{CallID: call.ID, Output: "rows: " + call.Arguments, Dataset: ds}, nil
		},
	})

	before := toolCounter(t, "registry_exec_ok", "success")
	result, err := reg.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: "registry_exec_ok", Arguments: "{}"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CallID != "c1" || result.Output != "rows: {}" || result.Dataset != ds {
		t.Errorf("unexpected result %+v", result)
	}
	if got := toolCounter(t, "registry_exec_ok", "success") - before; got != 1 {
		t.Errorf("success counter delta = %v, want 1", got)
	}
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	reg := New()
	result, err := reg.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: "missing"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.IsError || result.CallID != "c1" {
		t.Errorf("expected error result, got %+v", result)
	}
}

func TestRegistry_ToolNameConflict(t *testing.T) {
	reg := New()
	n := reg.Register(&mockProvider{
		name:     "first",
		toolDefs: []api.ToolDefinition{{Name: "shared"}},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return &tools.ToolResult{CallID: call.ID, Output: "first"}, nil
		},
	})
	m := reg.Register(&mockProvider{
		name:     "second",
		toolDefs: []api.ToolDefinition{{Name: "shared"}, {Name: "own"}},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			return &tools.ToolResult{CallID: call.ID, Output: "second"}, nil
		},
	})

	if n != 1 || m != 1 {
		t.Errorf("claimed = %d, %d, want 1, 1", n, m)
	}

	result, _ := reg.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: "shared"})
	if result.Output != "first" {
		t.Errorf("expected first provider to win, got %q", result.Output)
	}

	defs := reg.DiscoveredTools()
	if len(defs) != 2 || defs[0].Name != "shared" || defs[1].Name != "own" {
		t.Errorf("DiscoveredTools() = %+v, want shared listed once then own", defs)
	}
}

func TestRegistry_FillsMissingResults(t *testing.T) {
	reg := New()
	reg.Register(&mockProvider{
		name: "p",
		toolDefs: []api.ToolDefinition{
			{Name: "registry_no_result"},
			{Name: "registry_no_call_id"},
		},
		execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
			if call.Name == "registry_no_result" {
				return nil, nil
			}
			return &tools.ToolResult{Output: "ok"}, nil
		},
	})

	before := toolCounter(t, "registry_no_result", "tool_error")
	result, err := reg.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: "registry_no_result"})
	if err != nil || result == nil || !result.IsError || result.CallID != "c1" {
		t.Errorf("nil result: got %+v, %v", result, err)
	}
	if got := toolCounter(t, "registry_no_result", "tool_error") - before; got != 1 {
		t.Errorf("tool_error counter delta = %v, want 1", got)
	}

	result, _ = reg.Execute(context.Background(), tools.ToolCall{ID: "c2", Name: "registry_no_call_id"})
	if result.CallID != "c2" || result.Output != "ok" {
		t.Errorf("missing call id: got %+v", result)
	}
}

func TestRegistry_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		execFn     func(context.Context, tools.ToolCall) (*tools.ToolResult, error)
		wantStatus string
		wantErr    bool
		wantIsErr  bool
	}{
		{
			name: "panic is recovered",
			tool: "registry_panics",
			execFn: func(context.Context, tools.ToolCall) (*tools.ToolResult, error) {
				panic("boom")
			},
			wantStatus: "panic",
			wantIsErr:  true,
		},
		{
			name: "executor error is returned",
			tool: "registry_errors",
			execFn: func(context.Context, tools.ToolCall) (*tools.ToolResult, error) {
				return nil, errors.New("backend down")
			},
			wantStatus: "error",
			wantErr:    true,
		},
		{
			name: "tool error is a result",
			tool: "registry_tool_error",
			execFn: func(_ context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
				return tools.ErrorResult(call.ID, "bad url"), nil
			},
			wantStatus: "tool_error",
			wantIsErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New()
			reg.Register(&mockProvider{
				name:     "p",
				toolDefs: []api.ToolDefinition{{Name: tt.tool}},
				execFn:   tt.execFn,
			})

			before := toolCounter(t, tt.tool, tt.wantStatus)
			result, err := reg.Execute(context.Background(), tools.ToolCall{ID: "c1", Name: tt.tool})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantIsErr && (result == nil || !result.IsError) {
				t.Errorf("expected error result, got %+v", result)
			}
			if got := toolCounter(t, tt.tool, tt.wantStatus) - before; got != 1 {
				t.Errorf("%s counter delta = %v, want 1", tt.wantStatus, got)
			}
		})
	}
}

func TestRegistry_EmptyRegistry(t *testing.T) {
	reg := New()
	if tools := reg.DiscoveredTools(); len(tools) != 0 {
		t.Errorf("expected no tools, got %d", len(tools))
	}
	if err := reg.Close(); err != nil {
		t.Errorf("Close on empty registry: %v", err)
	}
}

func TestRegistry_Close(t *testing.T) {
	ok := &mockProvider{name: "ok"}
	failing := &mockProvider{name: "failing", closeErr: errors.New("close failed")}

	reg := New()
	reg.Register(ok)
	reg.Register(failing)

	if err := reg.Close(); err == nil || !strings.Contains(err.Error(), "failing: close failed") {
		t.Errorf("Close() = %v, want the failing provider's error", err)
	}
	if !ok.closed || !failing.closed {
		t.Error("expected every provider to be closed")
	}
}
