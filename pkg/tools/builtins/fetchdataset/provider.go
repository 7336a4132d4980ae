// Package fetchdataset exposes the dataset normalizer to the generator as
// the fetch_dataset tool.
package fetchdataset

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/tools"
	"github.com/Janani-6874/dataagent/pkg/tools/registry"
)

// ToolName is the name the generator calls the tool by.
const ToolName = "fetch_dataset"

var toolParametersJSON = json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"URL of a CSV, Excel, JSON, Parquet, or HTML resource (http, https, or s3)"}},"required":["url"]}`)

const toolDescription = "Download a tabular resource from a URL and return it as " +
	"{\"columns\": [...], \"data\": [{column: value}, ...]}. " +
	"HTML pages yield their first table, or the visible text as a single 'text' column."

// Normalizer turns a URL into a Dataset. *dataset.Normalizer satisfies it.
type Normalizer interface {
	Normalize(ctx context.Context, rawURL string) (*api.Dataset, error)
}

// Provider implements registry.FunctionProvider for fetch_dataset.
type Provider struct {
	normalizer Normalizer
}

var _ registry.FunctionProvider = (*Provider)(nil)

// New creates a Provider backed by n.
func New(n Normalizer) *Provider {
	return &Provider{normalizer: n}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ToolName
}

// Tools returns the fetch_dataset definition.
func (p *Provider) Tools() []api.ToolDefinition {
	return []api.ToolDefinition{
		{
			Type:        "function",
			Name:        ToolName,
			Description: toolDescription,
			Parameters:  toolParametersJSON,
		},
	}
}

// successOutput and errorOutput are the two shapes fed back to the generator.
type successOutput struct {
	Status  string           `json:"status"`
	Columns []string         `json:"columns"`
	Data    []map[string]any `json:"data"`
}

type errorOutput struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Data    []any    `json:"data"`
	Columns []string `json:"columns"`
}

// Execute fetches the URL named in the arguments. Fetch and parse failures
// are returned as error results, never as errors.
func (p *Provider) Execute(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return errorResult(call.ID, fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	args.URL = strings.TrimSpace(args.URL)
	if args.URL == "" {
		return errorResult(call.ID, "url must not be empty"), nil
	}

	ds, err := p.normalizer.Normalize(ctx, args.URL)
	if err != nil {
		debug.Log("fetch", "fetch_dataset failed", "url", args.URL, "error", err)
		return errorResult(call.ID, err.Error()), nil
	}

	columns, data := ds.Columns, ds.Data
	if columns == nil {
		columns = []string{}
	}
	if data == nil {
		data = []map[string]any{}
	}
	out, err := json.Marshal(successOutput{Status: "success", Columns: columns, Data: data})
	if err != nil {
		return errorResult(call.ID, fmt.Sprintf("encoding dataset: %v", err)), nil
	}

	return &tools.ToolResult{
		CallID:  call.ID,
		Output:  string(out),
		Dataset: ds,
	}, nil
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}

func errorResult(callID, message string) *tools.ToolResult {
	out, _ := json.Marshal(errorOutput{
		Status:  "error",
		Message: message,
		Data:    []any{},
		Columns: []string{},
	})
	return &tools.ToolResult{CallID: callID, Output: string(out), IsError: true}
}
