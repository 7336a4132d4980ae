// Package tools defines the tool executor interface and types for the
// generator's tool-call loop. Executors wrap in-process function
// providers (fetch_dataset) and remote MCP server tools behind one
// ToolExecutor contract.
//
// The package also provides filtering of tool calls against the set of
// tools that were actually offered to the generator.
package tools
