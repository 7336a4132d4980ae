package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// MCPClient is one session with one MCP server. Its tool list is cached
// until the server announces a change.
type MCPClient struct {
	cfg     ServerConfig
	session *mcp.ClientSession

	// stale is set by the list-changed notification, which may arrive on
	// the session's read loop and therefore must not take mu.
	stale atomic.Bool

	mu     sync.Mutex
	listed bool
	defs   []api.ToolDefinition
}

// NewMCPClient returns an unconnected client for cfg.
func NewMCPClient(cfg ServerConfig) *MCPClient {
	return &MCPClient{cfg: cfg}
}

// Name returns the configured server name.
func (c *MCPClient) Name() string {
	return c.cfg.Name
}

// Connect dials the configured URL and performs the handshake.
func (c *MCPClient) Connect(ctx context.Context) error {
	return c.ConnectWithTransport(ctx, nil)
}

// ConnectWithTransport performs the handshake over transport, or over one
// built from the configuration when transport is nil.
func (c *MCPClient) ConnectWithTransport(ctx context.Context, transport mcp.Transport) error {
	if transport == nil {
		t, err := c.newTransport()
		if err != nil {
			return fmt.Errorf("creating transport for %q: %w", c.cfg.Name, err)
		}
		transport = t
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "dataagent", Version: Version}, &mcp.ClientOptions{
		Capabilities: &mcp.ClientCapabilities{},
		ToolListChangedHandler: func(context.Context, *mcp.ToolListChangedRequest) {
			debug.Log("mcp", "tool list changed", "server", c.cfg.Name)
			c.stale.Store(true)
		},
	})
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("connecting to MCP server %q: %w", c.cfg.Name, err)
	}
	c.session = session
	debug.Log("mcp", "connected", "server", c.cfg.Name, "url", c.cfg.URL)
	return nil
}

func (c *MCPClient) newTransport() (mcp.Transport, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := c.buildHTTPClient()
	if c.cfg.Transport == TransportSSE {
		return &mcp.SSEClientTransport{Endpoint: c.cfg.URL, HTTPClient: httpClient}, nil
	}
	return &mcp.StreamableClientTransport{Endpoint: c.cfg.URL, HTTPClient: httpClient}, nil
}

// buildHTTPClient returns a client that adds the configured headers, or
// nil to let the SDK use its default.
func (c *MCPClient) buildHTTPClient() *http.Client {
	if len(c.cfg.Headers) == 0 {
		return nil
	}
	header := make(http.Header, len(c.cfg.Headers))
	for k, v := range c.cfg.Headers {
		header.Set(k, v)
	}
	return &http.Client{Transport: &headerTransport{base: http.DefaultTransport, header: header}}
}

type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, vs := range t.header {
		req.Header[k] = vs
	}
	return t.base.RoundTrip(req)
}

// DiscoverTools returns the server's tools, listing them again only when
// nothing is cached or the server announced a change.
func (c *MCPClient) DiscoverTools(ctx context.Context) ([]api.ToolDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listed && !c.stale.Load() {
		return c.defs, nil
	}
	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	// A change announced while listing marks the client stale again.
	c.stale.Store(false)
	var defs []api.ToolDefinition
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			c.stale.Store(true)
			return nil, fmt.Errorf("listing tools from %q: %w", c.cfg.Name, err)
		}
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q from %q: marshaling input schema: %w", tool.Name, c.cfg.Name, err)
		}
		if tool.InputSchema == nil {
			schema = nil
		}
		defs = append(defs, api.ToolDefinition{
			Type:        "function",
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schema,
		})
	}

	c.defs, c.listed = defs, true
	return defs, nil
}

// CallTool runs call on the server. Malformed arguments and protocol
// failures come back as error results for the generator to read.
func (c *MCPClient) CallTool(ctx context.Context, call tools.ToolCall) (*tools.ToolResult, error) {
	if c.session == nil {
		return nil, fmt.Errorf("MCP client %q not connected", c.cfg.Name)
	}

	var args map[string]any
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return tools.ErrorResult(call.ID, fmt.Sprintf("invalid arguments JSON: %v", err)), nil
		}
	}

	debug.Log("mcp", "tool call", "server", c.cfg.Name, "tool", call.Name,
		"args", debug.Truncate(call.Arguments, 200))

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: call.Name, Arguments: args})
	if err != nil {
		return tools.ErrorResult(call.ID, fmt.Sprintf("MCP tool call error: %v", err)), nil
	}
	return toolResult(call.ID, res), nil
}

// Close ends the session.
func (c *MCPClient) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}

// toolResult joins the text content of res. A successful result whose
// structured content has the columns/data shape also carries it as a
// Dataset, so remote fetch_dataset servers feed injection the same way
// the built-in does.
func toolResult(callID string, res *mcp.CallToolResult) *tools.ToolResult {
	var texts []string
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}

	out := &tools.ToolResult{
		CallID:  callID,
		Output:  strings.Join(texts, "\n"),
		IsError: res.IsError,
	}
	if !res.IsError && res.StructuredContent != nil {
		out.Dataset = structuredDataset(res.StructuredContent)
	}
	return out
}

func structuredDataset(v any) *api.Dataset {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if !gjson.GetBytes(raw, "columns").IsArray() || !gjson.GetBytes(raw, "data").IsArray() {
		return nil
	}
	ds, err := api.DecodeDataset(raw)
	if err != nil {
		debug.Log("mcp", "structured content is not a dataset", "error", err)
		return nil
	}
	return ds
}
