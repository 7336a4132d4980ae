package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// bracketSuffix matches trailing bracketed annotations such as footnote
// markers or units: "Population[3]", "Height [m]", "Rank[a][b]".
var bracketSuffix = regexp.MustCompile(`(\s*\[[^\]]*\])+\s*$`)

// naTokens are cell values read as missing, in addition to the empty string.
var naTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "#N/A": true,
	"NaN": true, "nan": true, "NULL": true, "null": true, "None": true,
}

// ColumnNames coerces header cells into unique column names. Blank names
// become "Unnamed: i"; repeats get ".1", ".2" suffixes in order of
// appearance. With stripBrackets, trailing bracketed annotations are removed first.
func ColumnNames(raw []string, stripBrackets bool) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := h
		if stripBrackets {
			name = strings.TrimSpace(bracketSuffix.ReplaceAllString(name, ""))
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for taken[name] {
			seen[base]++
			name = fmt.Sprintf("%s.%d", base, seen[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// columnKind is the inferred type of a string column.
type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindBool
	kindString
)

// typedTable converts a string grid into a dataset, inferring one type per
// column. Short rows are padded with nil; cells beyond the header are dropped.
func typedTable(cols []string, rows [][]string) *api.Dataset {
	kinds := make([]columnKind, len(cols))
	for j := range cols {
		kinds[j] = inferKind(rows, j)
	}

	data := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(cols))
		for j, c := range cols {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			rec[c] = convertCell(cell, kinds[j])
		}
		data = append(data, rec)
	}
	return &api.Dataset{Columns: cols, Data: data}
}

func isMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || naTokens[s]
}

// inferKind picks the narrowest type that every non-missing cell in column
// j parses as: integer, then float, then boolean, else string.
func inferKind(rows [][]string, j int) columnKind {
	allInt, allFloat, allBool := true, true, true
	nonEmpty := false
	for _, row := range rows {
		if j >= len(row) || isMissing(row[j]) {
			continue
		}
		nonEmpty = true
		s := strings.TrimSpace(row[j])
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(s); !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			return kindString
		}
	}
	switch {
	case !nonEmpty:
		return kindString
	case allInt:
		return kindInt
	case allFloat:
		return kindFloat
	case allBool:
		return kindBool
	default:
		return kindString
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func convertCell(cell string, kind columnKind) any {
	if isMissing(cell) {
		return nil
	}
	s := strings.TrimSpace(cell)
	switch kind {
	case kindInt:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case kindFloat:
		v, _ := strconv.ParseFloat(s, 64)
		return sanitizeValue(v)
	case kindBool:
		v, _ := parseBool(s)
		return v
	default:
		return cell
	}
}

// sanitizeValue maps a cell to a JSON-safe value: NaN becomes nil,
// infinities and non-JSON types become strings.
func sanitizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		switch {
		case math.IsNaN(x):
			return nil
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		}
		return x
	case float32:
		return sanitizeValue(float64(x))
	case int, int8, int16, int32, int64, uint8, uint16, uint32, bool, string:
		return x
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = sanitizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = sanitizeValue(e)
		}
		return out
	default:
		if b, err := json.Marshal(x); err == nil {
			return string(b)
		}
		return fmt.Sprint(x)
	}
}
