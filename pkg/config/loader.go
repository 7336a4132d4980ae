package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// geminiBaseURL is the OpenAI-compatible endpoint used when only GOOGLE_API_KEY is set.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, DATAAGENT_CONFIG env, ./config.yaml, /etc/dataagent/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. DATAAGENT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/dataagent/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("DATAAGENT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/dataagent/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// structured DATAAGENT_* names win over the provider-specific legacy names.
func applyEnvOverrides(cfg *Config) {
	applyLegacyEnv(cfg)

	if v := os.Getenv("DATAAGENT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATAAGENT_PROVIDER"); v != "" {
		cfg.Engine.Provider = v
	}
	if v := os.Getenv("DATAAGENT_BACKEND_URL"); v != "" {
		cfg.Engine.BackendURL = v
	}
	if v := os.Getenv("DATAAGENT_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("DATAAGENT_MODEL"); v != "" {
		cfg.Engine.Model = v
	}
	if v := os.Getenv("DATAAGENT_STRATEGY"); v != "" {
		cfg.Engine.Strategy = v
	}
	if v := os.Getenv("DATAAGENT_JSON_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.JSONMode = b
		}
	}
	if v := os.Getenv("DATAAGENT_SANDBOX_BACKEND"); v != "" {
		cfg.Sandbox.Backend = v
	}
	if v := os.Getenv("DATAAGENT_SANDBOX_URL"); v != "" {
		cfg.Sandbox.RemoteURL = v
	}
	if v := os.Getenv("DATAAGENT_PYTHON"); v != "" {
		cfg.Sandbox.Python = v
	}
	if v := os.Getenv("DATAAGENT_SANDBOX_TIMEOUT"); v != "" {
		if d, ok := parseSeconds(v); ok {
			cfg.Sandbox.Timeout = d
		}
	}
	if v := os.Getenv("DATAAGENT_STRIP_COLUMN_BRACKETS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fetch.StripColumnBrackets = b
		}
	}

	// DATAAGENT_MCP_SERVERS: JSON array of MCP server configs.
	if v := os.Getenv("DATAAGENT_MCP_SERVERS"); v != "" {
		servers, err := parseMCPServersJSON(v)
		if err == nil && len(servers) > 0 {
			cfg.MCP.Servers = servers
		}
	}
}

// applyLegacyEnv honors the variable names the service was first deployed
// with: LLM_TIMEOUT_SECONDS and the per-vendor API key variables.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if d, ok := parseSeconds(v); ok {
			cfg.Engine.Timeout = d
		}
	}

	switch {
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Engine.Provider = "openai"
		cfg.Engine.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Engine.Provider = "anthropic"
		cfg.Engine.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.Engine.BackendURL = ""
		if cfg.Engine.Model == Defaults().Engine.Model {
			cfg.Engine.Model = "claude-sonnet-4-5"
		}
	case os.Getenv("GOOGLE_API_KEY") != "":
		cfg.Engine.Provider = "openai"
		cfg.Engine.BackendURL = geminiBaseURL
		cfg.Engine.APIKey = os.Getenv("GOOGLE_API_KEY")
		cfg.Engine.Model = "gemini-2.5-pro"
		if m := os.Getenv("GOOGLE_MODEL"); m != "" {
			cfg.Engine.Model = m
		}
	}
}

// parseSeconds accepts either a bare number of seconds or a Go duration string.
func parseSeconds(v string) (time.Duration, bool) {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(n * float64(time.Second)), true
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	return 0, false
}

// parseMCPServersJSON parses a JSON array of MCP server configurations.
func parseMCPServersJSON(jsonStr string) ([]MCPServerConfig, error) {
	var servers []MCPServerConfig
	if err := json.Unmarshal([]byte(jsonStr), &servers); err != nil {
		return nil, fmt.Errorf("parsing MCP servers JSON: %w", err)
	}
	return servers, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// The file is only read when the value field is still empty.
func resolveFileReferences(cfg *Config) error {
	if cfg.Engine.APIKeyFile != "" && cfg.Engine.APIKey == "" {
		val, err := readSecretFile(cfg.Engine.APIKeyFile)
		if err != nil {
			return fmt.Errorf("engine.api_key_file: %w", err)
		}
		cfg.Engine.APIKey = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
