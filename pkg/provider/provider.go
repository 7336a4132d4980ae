package provider

import (
	"context"
)

// Provider is a generator backend: a conversation goes in, and text or
// tool calls come out. Each adapter speaks its own wire protocol.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name labels metrics and logs (e.g., "openai", "anthropic").
	Name() string

	// Capabilities returns what this backend supports.
	Capabilities() ProviderCapabilities

	// Complete performs one non-streaming completion. Errors are
	// *api.APIError values.
	Complete(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// Close releases idle connections.
	Close() error
}
