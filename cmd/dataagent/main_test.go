package main

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/config"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "sandbox", "ask", "fetch", "exec", "mcp"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if !root.SilenceUsage || !root.SilenceErrors {
		t.Error("root command should silence usage and errors")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EngineConfig
		wantName string
		wantErr  bool
	}{
		{
			name:     "openai compatible",
			cfg:      config.EngineConfig{Provider: "openai", BackendURL: "http://localhost:8000/v1"},
			wantName: "openai",
		},
		{
			name:     "anthropic ignores the openai default URL",
			cfg:      config.EngineConfig{Provider: "anthropic", APIKey: "sk-test", BackendURL: config.Defaults().Engine.BackendURL},
			wantName: "anthropic",
		},
		{
			name:    "anthropic without key",
			cfg:     config.EngineConfig{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.EngineConfig{Provider: "cohere"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newProvider: %v", err)
			}
			defer p.Close()
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestMCPConfig(t *testing.T) {
	got := mcpConfig(config.MCPConfig{Servers: []config.MCPServerConfig{
		{Name: "files", Transport: "sse", URL: "http://files/sse", Headers: map[string]string{"X-Key": "k"}},
	}})
	if len(got.Servers) != 1 {
		t.Fatalf("servers = %d", len(got.Servers))
	}
	s := got.Servers[0]
	if s.Name != "files" || s.Transport != "sse" || s.URL != "http://files/sse" || s.Headers["X-Key"] != "k" {
		t.Errorf("server = %+v", s)
	}
}

func TestResultTree(t *testing.T) {
	res := api.Succeeded(map[string]any{
		"total": 3,
		"rows":  []any{map[string]any{"city": "Oslo"}},
		"plot":  strings.Repeat("A", 500),
		"none":  nil,
	})

	out, err := pterm.DefaultTree.WithRoot(resultTree(res)).Srender()
	if err != nil {
		t.Fatalf("Srender: %v", err)
	}
	out = pterm.RemoveColorFromString(out)

	for _, want := range []string{"status: \"success\"", "result", "total: 3", "[0]", "city: \"Oslo\"", "none: null", "(500 chars)"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("A", 200)) {
		t.Error("long string leaf was not truncated")
	}

	failed := pterm.RemoveColorFromString(mustRender(t, resultTree(api.Failed(api.FailureExit, "boom"))))
	if !strings.Contains(failed, "reason: \"exit\"") || !strings.Contains(failed, "message: \"boom\"") {
		t.Errorf("failure tree:\n%s", failed)
	}
}

func mustRender(t *testing.T, node pterm.TreeNode) string {
	t.Helper()
	out, err := pterm.DefaultTree.WithRoot(node).Srender()
	if err != nil {
		t.Fatalf("Srender: %v", err)
	}
	return out
}
