package tools

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// Screened splits a round of tool calls into the ones to execute and
// error results for the ones that must not run.
type Screened struct {
	Run     []ToolCall
	Refused []ToolResult
}

// ScreenCalls refuses calls to tools that were not offered in defs and
// calls whose arguments are not a JSON object. Empty arguments are
// treated as {}. Order within Run and Refused follows calls.
func ScreenCalls(calls []ToolCall, defs []api.ToolDefinition) Screened {
	offered := make(map[string]bool, len(defs))
	for _, d := range defs {
		offered[d.Name] = true
	}

	var s Screened
	for _, call := range calls {
		if !offered[call.Name] {
			s.Refused = append(s.Refused, *ErrorResult(call.ID, "tool "+call.Name+" is not available"))
			continue
		}
		args := strings.TrimSpace(call.Arguments)
		if args == "" {
			call.Arguments = "{}"
		} else if !gjson.Valid(args) || !gjson.Parse(args).IsObject() {
			s.Refused = append(s.Refused, *ErrorResult(call.ID,
				"arguments for "+call.Name+" must be a JSON object"))
			continue
		}
		s.Run = append(s.Run, call)
	}
	return s
}
