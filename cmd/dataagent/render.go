package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// maxLeafLen caps how much of a string leaf is printed; base64 plots run
// to hundreds of kilobytes.
const maxLeafLen = 120

// resultTree converts an execution result to a tree for terminal display.
func resultTree(res *api.ExecutionResult) pterm.TreeNode {
	data, err := json.Marshal(res)
	if err != nil {
		return pterm.TreeNode{Text: err.Error()}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return pterm.TreeNode{Text: err.Error()}
	}
	return pterm.TreeNode{Children: valueNodes(v)}
}

// valueNodes renders the children of a JSON container. Object keys are
// sorted so the output is stable.
func valueNodes(v any) []pterm.TreeNode {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		nodes := make([]pterm.TreeNode, 0, len(keys))
		for _, k := range keys {
			nodes = append(nodes, labeledNode(k, t[k]))
		}
		return nodes
	case []any:
		nodes := make([]pterm.TreeNode, 0, len(t))
		for i, item := range t {
			nodes = append(nodes, labeledNode(fmt.Sprintf("[%d]", i), item))
		}
		return nodes
	default:
		return nil
	}
}

func labeledNode(label string, v any) pterm.TreeNode {
	switch t := v.(type) {
	case map[string]any, []any:
		return pterm.TreeNode{Text: label, Children: valueNodes(t)}
	default:
		return pterm.TreeNode{Text: label + ": " + leafText(t)}
	}
}

func leafText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		if len(t) > maxLeafLen {
			return fmt.Sprintf("%q... (%d chars)", t[:maxLeafLen], len(t))
		}
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprint(t)
	}
}
