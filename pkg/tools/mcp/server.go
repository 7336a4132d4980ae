package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// Version is reported in the MCP implementation info of both the client
// and the server.
const Version = "1.0.0"

var emptyObjectSchema = json.RawMessage(`{"type":"object"}`)

// NewServer creates an MCP server that publishes every tool discovered by
// exec. Tool errors are returned as IsError results; a JSON object output
// is also sent as structured content.
func NewServer(name string, exec tools.ToolExecutor) *mcp.Server {
	if name == "" {
		name = "dataagent"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: Version}, nil)

	for _, td := range exec.DiscoveredTools() {
		server.AddTool(&mcp.Tool{
			Name:        td.Name,
			Description: td.Description,
			InputSchema: inputSchema(td),
		}, toolHandler(exec, td.Name))
		debug.Log("mcp", "published tool", "tool", td.Name)
	}
	return server
}

func inputSchema(td api.ToolDefinition) json.RawMessage {
	if len(td.Parameters) == 0 || gjson.GetBytes(td.Parameters, "type").String() != "object" {
		return emptyObjectSchema
	}
	return td.Parameters
}

func toolHandler(exec tools.ToolExecutor, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if len(req.Params.Arguments) > 0 {
			args = string(req.Params.Arguments)
		}

		res, err := exec.Execute(ctx, tools.ToolCall{
			ID:        api.NewCallID(),
			Name:      name,
			Arguments: args,
		})
		if err != nil {
			slog.Warn("mcp tool execution failed", "tool", name, "error", err)
			out := &mcp.CallToolResult{}
			out.SetError(err)
			return out, nil
		}

		out := &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Output}},
			IsError: res.IsError,
		}
		if gjson.Valid(res.Output) && gjson.Parse(res.Output).IsObject() {
			out.StructuredContent = json.RawMessage(res.Output)
		}
		return out, nil
	}
}

// ServeStdio runs server over stdin and stdout until ctx is done or the
// peer disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves server over streamable HTTP.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
