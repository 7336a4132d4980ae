package api

import (
	"strings"
	"testing"
)

func TestNewExecutionID(t *testing.T) {
	id := NewExecutionID()
	if !ValidateExecutionID(id) {
		t.Errorf("NewExecutionID() = %q, want valid execution ID", id)
	}
}

func TestNewCallID(t *testing.T) {
	id := NewCallID()
	if !strings.HasPrefix(id, "call_") || len(id) != len("call_")+idLength {
		t.Errorf("NewCallID() = %q", id)
	}
}

func TestValidateExecutionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "exec_abcdefghij012345", true},
		{"uppercase", "exec_ABCDEFGHIJ012345", false},
		{"wrong prefix", "call_abcdefghij012345", false},
		{"too short", "exec_abc", false},
		{"too long", "exec_abcdefghij0123456", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateExecutionID(tt.id); got != tt.want {
				t.Errorf("ValidateExecutionID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestExecutionIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewExecutionID()
		if seen[id] {
			t.Fatalf("duplicate execution ID %q after %d iterations", id, i)
		}
		seen[id] = true
	}
}
