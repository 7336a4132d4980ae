package debug

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func withCategories(t *testing.T, s string) {
	t.Helper()
	orig := categories.Load()
	set := parseCategories(s)
	categories.Store(&set)
	t.Cleanup(func() { categories.Store(orig) })
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "sandbox", map[string]bool{"sandbox": true}},
		{"multiple", "sandbox,fetch", map[string]bool{"sandbox": true, "fetch": true}},
		{"with spaces", " sandbox , fetch ", map[string]bool{"sandbox": true, "fetch": true}},
		{"uppercase normalized", "SANDBOX,Fetch", map[string]bool{"sandbox": true, "fetch": true}},
		{"empty segments", "sandbox,,fetch", map[string]bool{"sandbox": true, "fetch": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len(got) = %d, want %d", len(got), len(tt.want))
			}
			for k := range tt.want {
				if !got[k] {
					t.Errorf("category %q missing", k)
				}
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	withCategories(t, "sandbox,engine")

	if !Enabled("sandbox") || !Enabled("engine") {
		t.Error("sandbox and engine should be enabled")
	}
	if Enabled("mcp") {
		t.Error("mcp should not be enabled")
	}
}

func TestEnabled_All(t *testing.T) {
	withCategories(t, "all")

	for _, cat := range []string{"sandbox", "fetch", "anything"} {
		if !Enabled(cat) {
			t.Errorf("%s should be enabled via 'all'", cat)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("this is a long string", 10); got != "this is a ..." {
		t.Errorf("Truncate long = %q", got)
	}
	// "é" is two bytes; cutting inside it must back off to the rune start.
	if got := Truncate("aé", 2); got != "a..." {
		t.Errorf("Truncate multibyte = %q, want %q", got, "a...")
	}
}

func TestPreview(t *testing.T) {
	got := Preview("import pandas\n\nresults['x'] = 1\n", 100)
	if got != "import pandas results['x'] = 1" {
		t.Errorf("Preview = %q", got)
	}
}

func TestInitJSONFormat(t *testing.T) {
	t.Setenv("DATAAGENT_DEBUG", "")
	t.Setenv("DATAAGENT_LOG_LEVEL", "")
	orig := slog.Default()
	origCats := categories.Load()
	t.Cleanup(func() {
		slog.SetDefault(orig)
		categories.Store(origCats)
	})

	var buf bytes.Buffer
	Init(Options{Categories: "sandbox", Level: "DEBUG", Format: "json", Output: &buf})
	Log("sandbox", "spawned", "pid", 42)
	Log("fetch", "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["debug"] != "sandbox" || rec["msg"] != "spawned" {
		t.Errorf("record = %v", rec)
	}
}

func TestInitEnvOverridesConfig(t *testing.T) {
	t.Setenv("DATAAGENT_DEBUG", "fetch")
	t.Setenv("DATAAGENT_LOG_LEVEL", "ERROR")
	orig := slog.Default()
	origCats := categories.Load()
	t.Cleanup(func() {
		slog.SetDefault(orig)
		categories.Store(origCats)
	})

	var buf bytes.Buffer
	Init(Options{Categories: "sandbox", Level: "DEBUG", Output: &buf})
	if Enabled("sandbox") || !Enabled("fetch") {
		t.Errorf("categories = %v, want env value", Categories())
	}
	Log("fetch", "below error level")
	if buf.Len() != 0 {
		t.Errorf("expected no output at ERROR level, got %q", buf.String())
	}
}
