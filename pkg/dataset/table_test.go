package dataset

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestColumnNames(t *testing.T) {
	tests := []struct {
		name  string
		raw   []string
		strip bool
		want  []string
	}{
		{"unique", []string{"a", "b"}, false, []string{"a", "b"}},
		{"duplicates", []string{"a", "a", "a"}, false, []string{"a", "a.1", "a.2"}},
		{"suffix collision", []string{"a", "a.1", "a"}, false, []string{"a", "a.1", "a.2"}},
		{"blank", []string{"", "x", " "}, false, []string{"Unnamed: 0", "x", "Unnamed: 2"}},
		{"brackets kept", []string{"Height [m]"}, false, []string{"Height [m]"}},
		{"brackets stripped", []string{"Height [m]", "Rank[a][b]"}, true, []string{"Height", "Rank"}},
		{"inner brackets kept", []string{"a[1]b", "Population[3] [m] "}, true, []string{"a[1]b", "Population"}},
		{"strip to blank", []string{"[1]"}, true, []string{"Unnamed: 0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColumnNames(tt.raw, tt.strip)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ColumnNames(%q, %v) = %q, want %q", tt.raw, tt.strip, got, tt.want)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  columnKind
	}{
		{"ints", []string{"1", "-2", ""}, kindInt},
		{"floats", []string{"1", "2.5"}, kindFloat},
		{"bools", []string{"TRUE", "false"}, kindBool},
		{"mixed", []string{"1", "x"}, kindString},
		{"all missing", []string{"", "NA"}, kindString},
		{"na tokens ignored", []string{"3", "NaN", "null"}, kindInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.cells))
			for i, c := range tt.cells {
				rows[i] = []string{c}
			}
			if got := inferKind(rows, 0); got != tt.want {
				t.Errorf("inferKind(%q) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}

func TestSanitizeValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), "inf"},
		{"neg inf", math.Inf(-1), "-inf"},
		{"float", 2.5, 2.5},
		{"bytes", []byte("ab"), "ab"},
		{"time", ts, "2024-03-01T12:00:00Z"},
		{"nested", []any{math.NaN(), 1.0}, []any{nil, 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeValue(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sanitizeValue(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
