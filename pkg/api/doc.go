// Package api defines the core data types shared by every dataagent layer.
//
// The package performs no I/O. All types produce the JSON shapes exposed on
// the HTTP API and consumed by the generator's tools.
//
// Core types:
//   - [Dataset]: normalized table (ordered columns plus records) fetched from a URL
//   - [GeneratedTask]: the {narrative, code} contract returned by the generator
//   - [ExecutionResult]: tagged success/error outcome of one sandbox execution
//   - [APIError]: structured error with type, code, param, and message
package api
