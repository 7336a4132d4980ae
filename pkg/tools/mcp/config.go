package mcp

import (
	"fmt"
	"net/url"
	"time"
)

// Transport names accepted in ServerConfig.Transport.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportSSE            = "sse"
)

const defaultConnectTimeout = 10 * time.Second

// Config lists the MCP servers whose tools are offered to the generator.
type Config struct {
	Servers []ServerConfig

	// ConnectTimeout bounds the handshake with each server. Zero means 10s.
	ConnectTimeout time.Duration
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return c.ConnectTimeout
}

// ServerConfig describes one MCP server. An empty Transport means
// streamable HTTP. Headers are sent with every request, typically an
// API key or bearer token.
type ServerConfig struct {
	Name      string            `json:"name"`
	Transport string            `json:"transport"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// Validate checks that the server can be dialed.
func (s ServerConfig) Validate() error {
	switch s.Transport {
	case "", TransportStreamableHTTP, TransportSSE:
	default:
		return fmt.Errorf("mcp server %q: unsupported transport type %q", s.Name, s.Transport)
	}
	if s.URL == "" {
		return fmt.Errorf("mcp server %q: url is required", s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("mcp server %q: url must be http or https, got %q", s.Name, s.URL)
	}
	return nil
}
