package tools

import (
	"context"
	"testing"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// mockExecutor is a test executor that handles all tools.
type mockExecutor struct {
	kind    ToolKind
	canExec func(string) bool
	execFn  func(context.Context, ToolCall) (*ToolResult, error)
}

func (m *mockExecutor) Kind() ToolKind              { return m.kind }
func (m *mockExecutor) CanExecute(name string) bool { return m.canExec(name) }
func (m *mockExecutor) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	return m.execFn(ctx, call)
}
func (m *mockExecutor) DiscoveredTools() []api.ToolDefinition { return nil }

var _ ToolExecutor = (*mockExecutor)(nil)

func TestToolExecutor_MockSatisfiesInterface(t *testing.T) {
	ds := &api.Dataset{Columns: []string{"a"}, Data: []map[string]any{{"a": int64(1)}}}
	exec := &mockExecutor{
		kind:    ToolKindMCP,
		canExec: func(string) bool { return true },
		execFn: func(_ context.Context, call ToolCall) (*ToolResult, error) {
			return &ToolResult{CallID: call.ID, Output: "result", Dataset: ds}, nil
		},
	}

	if exec.Kind() != ToolKindMCP {
		t.Errorf("Kind() = %d, want ToolKindMCP", exec.Kind())
	}

	result, err := exec.Execute(context.Background(), ToolCall{ID: "c1", Name: "test", Arguments: "{}"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CallID != "c1" || result.Output != "result" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Dataset.Len() != 1 {
		t.Errorf("dataset not carried: %+v", result.Dataset)
	}
}

func TestErrorResult(t *testing.T) {
	r := ErrorResult("c1", "connection refused")
	if !r.IsError || r.CallID != "c1" || r.Output != "connection refused" || r.Dataset != nil {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestToolKind_String(t *testing.T) {
	tests := []struct {
		kind ToolKind
		want string
	}{
		{ToolKindBuiltin, "builtin"},
		{ToolKindMCP, "mcp"},
		{ToolKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ToolKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
