package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Janani-6874/dataagent/pkg/config"
	"github.com/Janani-6874/dataagent/pkg/dataset"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/engine"
	"github.com/Janani-6874/dataagent/pkg/provider"
	"github.com/Janani-6874/dataagent/pkg/provider/anthropic"
	"github.com/Janani-6874/dataagent/pkg/provider/openaicompat"
	"github.com/Janani-6874/dataagent/pkg/sandbox"
	"github.com/Janani-6874/dataagent/pkg/tools"
	"github.com/Janani-6874/dataagent/pkg/tools/builtins/fetchdataset"
	"github.com/Janani-6874/dataagent/pkg/tools/mcp"
	"github.com/Janani-6874/dataagent/pkg/tools/registry"
)

// loadConfig loads the layered configuration and installs the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger := debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})
	return cfg, logger, nil
}

// app holds the wired components shared by the serving commands.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	provider   provider.Provider
	normalizer *dataset.Normalizer
	runner     sandbox.Runner
	tools      *registry.FunctionRegistry
	mcp        *mcp.MCPExecutor
	engine     *engine.Engine
}

// newApp wires the provider, runner, tool executors, and engine from cfg.
// MCP servers that cannot be reached are logged and skipped.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	prov, err := newProvider(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		provider:   prov,
		normalizer: newNormalizer(cfg.Fetch),
		runner:     newRunner(cfg.Sandbox),
		tools:      registry.New(),
	}
	a.tools.Register(fetchdataset.New(a.normalizer))

	executors := []tools.ToolExecutor{a.tools}
	if len(cfg.MCP.Servers) > 0 {
		a.mcp, err = mcp.Connect(ctx, mcpConfig(cfg.MCP))
		if err != nil {
			logger.Warn("some MCP servers are unavailable", "error", err)
		}
		executors = append(executors, a.mcp)
	}

	a.engine, err = engine.New(prov, a.runner, engine.Config{
		Model:          cfg.Engine.Model,
		ChatModel:      cfg.Engine.ChatModel,
		SystemPrompt:   cfg.Engine.SystemPrompt,
		Temperature:    cfg.Engine.Temperature,
		MaxTokens:      cfg.Engine.MaxTokens,
		Strategy:       cfg.Engine.Strategy,
		MaxTurns:       cfg.Engine.MaxTurns,
		RepairAttempts: cfg.Engine.RepairAttempts,
		InjectDataset:  cfg.Engine.InjectDataset,
		JSONMode:       cfg.Engine.JSONMode,
		Timeout:        cfg.Engine.Timeout,
		ExecTimeout:    cfg.Sandbox.Timeout,
		Executors:      executors,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	logger.Info("engine ready",
		"provider", prov.Name(),
		"model", cfg.Engine.Model,
		"strategy", cfg.Engine.Strategy,
		"sandbox", cfg.Sandbox.Backend,
		"mcp_servers", len(cfg.MCP.Servers),
	)
	return a, nil
}

// Close releases the provider and tool connections.
func (a *app) Close() {
	if a.mcp != nil {
		if err := a.mcp.Close(); err != nil {
			a.logger.Warn("closing MCP clients", "error", err)
		}
	}
	a.tools.Close()
	a.provider.Close()
}

func newProvider(cfg config.EngineConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		// The default backend_url points at OpenAI; the SDK knows its own.
		baseURL := cfg.BackendURL
		if baseURL == config.Defaults().Engine.BackendURL {
			baseURL = ""
		}
		return anthropic.New(anthropic.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    baseURL,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})
	case "openai", "":
		return openaicompat.New(openaicompat.Config{
			BaseURL:    cfg.BackendURL,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func newNormalizer(cfg config.FetchConfig) *dataset.Normalizer {
	return dataset.New(dataset.Options{
		Timeout:             cfg.Timeout,
		UserAgent:           cfg.UserAgent,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		StripColumnBrackets: cfg.StripColumnBrackets,
		S3Region:            cfg.S3Region,
	})
}

func newRunner(cfg config.SandboxConfig) sandbox.Runner {
	if cfg.Backend == "remote" {
		return sandbox.NewRemoteClient(cfg.RemoteURL, nil)
	}
	return newExecutor(cfg)
}

func newExecutor(cfg config.SandboxConfig) *sandbox.Executor {
	return sandbox.NewExecutor(sandbox.Options{
		Python:        cfg.Python,
		TempDir:       cfg.TempDir,
		Timeout:       cfg.Timeout,
		MaxConcurrent: cfg.MaxConcurrent,
		Libraries:     cfg.Libraries,
	})
}

func mcpConfig(cfg config.MCPConfig) mcp.Config {
	servers := make([]mcp.ServerConfig, len(cfg.Servers))
	for i, s := range cfg.Servers {
		servers[i] = mcp.ServerConfig{
			Name:      s.Name,
			Transport: s.Transport,
			URL:       s.URL,
			Headers:   s.Headers,
		}
	}
	return mcp.Config{Servers: servers, ConnectTimeout: cfg.ConnectTimeout}
}
