// Package config provides unified configuration for the dataagent service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (DATAAGENT_ prefix plus legacy names)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the dataagent service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Fetch         FetchConfig         `yaml:"fetch"`
	MCP           MCPConfig           `yaml:"mcp"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`             // default: 8080
	ReadTimeout    time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout   time.Duration `yaml:"write_timeout"`    // default: 180s
	MaxBodySize    int64         `yaml:"max_body_size"`    // default: 10 MiB
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`   // 0 disables
	RateLimitBurst int           `yaml:"rate_limit_burst"` // default: 10
	UI             bool          `yaml:"ui"`               // default: true
}

// EngineConfig holds generator and orchestration settings.
type EngineConfig struct {
	Provider       string        `yaml:"provider"`        // "openai" or "anthropic", default: "openai"
	BackendURL     string        `yaml:"backend_url"`     // default: https://api.openai.com/v1
	APIKey         string        `yaml:"api_key"`         // optional
	APIKeyFile     string        `yaml:"api_key_file"`    // _file variant for api_key
	Model          string        `yaml:"model"`           // default: "gpt-4o-mini"
	ChatModel      string        `yaml:"chat_model"`      // default model for /api/chat
	Timeout        time.Duration `yaml:"timeout"`         // default: 120s
	MaxRetries     int           `yaml:"max_retries"`     // default: 2
	Temperature    float64       `yaml:"temperature"`     // default: 0
	MaxTokens      int           `yaml:"max_tokens"`      // default: 4096
	Strategy       string        `yaml:"strategy"`        // "single" or "loop", default: "single"
	MaxTurns       int           `yaml:"max_turns"`       // default: 10
	RepairAttempts int           `yaml:"repair_attempts"` // default: 0
	InjectDataset  bool          `yaml:"inject_dataset"`  // default: true
	JSONMode       bool          `yaml:"json_mode"`       // default: false
	SystemPrompt   string        `yaml:"system_prompt"`   // empty uses the built-in prompt
}

// SandboxConfig holds code execution settings.
type SandboxConfig struct {
	Backend       string        `yaml:"backend"`        // "local" or "remote", default: "local"
	RemoteURL     string        `yaml:"remote_url"`     // required for backend=remote
	Python        string        `yaml:"python"`         // default: "python3"
	TempDir       string        `yaml:"temp_dir"`       // default: os.TempDir()
	Timeout       time.Duration `yaml:"timeout"`        // default: 60s
	MaxConcurrent int           `yaml:"max_concurrent"` // default: 4
	Libraries     []string      `yaml:"libraries"`      // preamble import lines, nil uses the default block
	Port          int           `yaml:"port"`           // listen port for "dataagent sandbox", default: 8081
}

// FetchConfig holds dataset normalizer settings.
type FetchConfig struct {
	Timeout             time.Duration `yaml:"timeout"`               // default: 15s
	UserAgent           string        `yaml:"user_agent"`            // default: Mozilla/5.0 (compatible; dataagent/1.0)
	MaxBodyBytes        int64         `yaml:"max_body_bytes"`        // default: 50 MiB
	StripColumnBrackets bool          `yaml:"strip_column_brackets"` // default: false
	S3Region            string        `yaml:"s3_region"`             // optional, falls back to the AWS default chain
}

// MCPConfig holds MCP server connection settings.
type MCPConfig struct {
	Servers        []MCPServerConfig `yaml:"servers"`
	ConnectTimeout time.Duration     `yaml:"connect_timeout"` // default: 10s
}

// MCPServerConfig describes a single MCP server connection.
type MCPServerConfig struct {
	Name      string            `yaml:"name" json:"name"`
	Transport string            `yaml:"transport" json:"transport"` // "streamable-http" or "sse"
	URL       string            `yaml:"url" json:"url"`
	Headers   map[string]string `yaml:"headers" json:"headers"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Debug  string `yaml:"debug"`  // comma-separated debug categories
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// Defaults returns a Config populated with sensible default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   180 * time.Second,
			MaxBodySize:    10 << 20,
			RateLimitBurst: 10,
			UI:             true,
		},
		Engine: EngineConfig{
			Provider:      "openai",
			BackendURL:    "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			ChatModel:     "gpt-4o-mini",
			Timeout:       120 * time.Second,
			MaxRetries:    2,
			MaxTokens:     4096,
			Strategy:      "single",
			MaxTurns:      10,
			InjectDataset: true,
		},
		Sandbox: SandboxConfig{
			Backend:       "local",
			Python:        "python3",
			Timeout:       60 * time.Second,
			MaxConcurrent: 4,
			Port:          8081,
		},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Mozilla/5.0 (compatible; dataagent/1.0)",
			MaxBodyBytes: 50 << 20,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
