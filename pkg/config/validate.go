package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_rps must be >= 0, got %g", c.Server.RateLimitRPS))
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_burst must be > 0 when rate limiting is enabled"))
	}

	switch c.Engine.Provider {
	case "openai":
		// The anthropic SDK has its own default endpoint; the OpenAI-compatible
		// client needs to know where to send requests.
		if c.Engine.BackendURL == "" {
			errs = append(errs, fmt.Errorf("engine.backend_url is required when engine.provider is \"openai\""))
		}
	case "anthropic":
	default:
		errs = append(errs, fmt.Errorf("engine.provider must be \"openai\" or \"anthropic\", got %q", c.Engine.Provider))
	}

	switch c.Engine.Strategy {
	case "single", "loop":
	default:
		errs = append(errs, fmt.Errorf("engine.strategy must be \"single\" or \"loop\", got %q", c.Engine.Strategy))
	}
	if c.Engine.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_turns must be > 0, got %d", c.Engine.MaxTurns))
	}
	if c.Engine.RepairAttempts < 0 {
		errs = append(errs, fmt.Errorf("engine.repair_attempts must be >= 0, got %d", c.Engine.RepairAttempts))
	}
	if c.Engine.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("engine.max_retries must be >= 0, got %d", c.Engine.MaxRetries))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("engine.timeout must be > 0"))
	}

	switch c.Sandbox.Backend {
	case "local":
	case "remote":
		if c.Sandbox.RemoteURL == "" {
			errs = append(errs, fmt.Errorf("sandbox.remote_url is required when sandbox.backend is \"remote\""))
		}
	default:
		errs = append(errs, fmt.Errorf("sandbox.backend must be \"local\" or \"remote\", got %q", c.Sandbox.Backend))
	}
	if c.Sandbox.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.timeout must be > 0"))
	}
	if c.Sandbox.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.max_concurrent must be > 0, got %d", c.Sandbox.MaxConcurrent))
	}

	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be > 0"))
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_body_bytes must be > 0"))
	}

	for i, s := range c.MCP.Servers {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].name is required", i))
		}
		if s.URL == "" {
			errs = append(errs, fmt.Errorf("mcp.servers[%d].url is required", i))
		}
		switch s.Transport {
		case "", "streamable-http", "sse":
		default:
			errs = append(errs, fmt.Errorf("mcp.servers[%d].transport must be \"streamable-http\" or \"sse\", got %q", i, s.Transport))
		}
	}

	switch c.Logging.Format {
	case "text", "json", "":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
