// Package transport defines the handler contract between the HTTP layer
// and the engine, and the middleware chain applied to every request.
//
// # Handler Interface
//
// Analyzer is implemented by the engine. The HTTP adapter in
// transport/http decodes requests, calls the Analyzer, and encodes results
// or APIError payloads.
//
// # Middleware
//
// Middleware wraps an http.Handler. Built-in middleware provides panic
// recovery, request ID assignment (X-Request-ID), structured logging via
// log/slog, and an optional token-bucket rate limit.
package transport
