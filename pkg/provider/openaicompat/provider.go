package openaicompat

import (
	"context"
	"fmt"
	"time"

	"github.com/Janani-6874/dataagent/pkg/provider"
)

// Config holds configuration for a Chat Completions backend.
type Config struct {
	// Name is reported by Provider.Name and used as the metrics label.
	// Defaults to "openai".
	Name string

	// BaseURL is the API root including the version segment
	// (e.g., "https://api.openai.com/v1").
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout for individual HTTP requests. Defaults to 120s.
	Timeout time.Duration

	// MaxRetries is how many times a request that hit a rate limit, a
	// gateway error or a connection failure is sent again.
	MaxRetries int
}

// Provider implements provider.Provider on top of Client.
type Provider struct {
	name   string
	client *Client
	caps   provider.ProviderCapabilities
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Provider with the given configuration.
func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: BaseURL is required")
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	return &Provider{
		name:   cfg.Name,
		client: NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout, cfg.MaxRetries),
		caps: provider.ProviderCapabilities{
			ToolCalling: true,
			JSONOutput:  true,
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Capabilities returns what this provider supports.
func (p *Provider) Capabilities() provider.ProviderCapabilities {
	return p.caps
}

// Complete performs non-streaming inference against the Chat Completions endpoint.
func (p *Provider) Complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	return p.client.Complete(ctx, req)
}

// Close releases provider resources.
func (p *Provider) Close() error {
	return p.client.Close()
}
