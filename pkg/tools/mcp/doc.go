// Package mcp connects dataagent to the Model Context Protocol in both
// directions.
//
// MCPClient and MCPExecutor connect to external MCP servers, discover their
// tools, and execute calls to them as part of the engine's tool rounds.
// MCPExecutor implements tools.ToolExecutor, so MCP tools sit alongside the
// in-process builtins.
//
// NewServer does the reverse: it publishes the tools of any
// tools.ToolExecutor (normally the builtin registry with fetch_dataset) as
// an MCP server reachable over stdio or streamable HTTP.
//
// The package wraps the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk).
package mcp
