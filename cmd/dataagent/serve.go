package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Janani-6874/dataagent/pkg/sandbox"
	"github.com/Janani-6874/dataagent/pkg/tools/mcp"
	transporthttp "github.com/Janani-6874/dataagent/pkg/transport/http"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		mountMCP  bool
		noUI      bool
		rateLimit float64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the analysis API: POST /api answers a question, POST /api/chat
proxies a conversation, GET /ui is a browser form, and GET /metrics exposes
Prometheus metrics when enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("rate-limit") {
				cfg.Server.RateLimitRPS = rateLimit
			}
			if noUI {
				cfg.Server.UI = false
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []transporthttp.ServerOption{
				transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
				transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
				transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
				transporthttp.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
				transporthttp.WithUI(cfg.Server.UI),
				transporthttp.WithLogger(logger),
			}
			if cfg.Observability.Metrics.Enabled {
				opts = append(opts, transporthttp.WithMetrics(cfg.Observability.Metrics.Path))
			}

			extra := map[string]http.Handler{}
			if mountMCP {
				extra["/mcp"] = mcp.HTTPHandler(mcp.NewServer("", a.tools))
			}

			return transporthttp.NewServer(a.engine, extra, opts...).ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Listen port (overrides server.port)")
	cmd.Flags().BoolVar(&mountMCP, "mcp", false, "Also expose fetch_dataset over MCP at /mcp")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the /ui page")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "Requests per second across all clients (0 disables)")

	return cmd
}

func newSandboxCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the remote code execution server",
		Long: `Serve POST /execute and GET /health so that "serve" instances configured
with sandbox.backend=remote run code on this host.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Sandbox.Port = port
			}

			handler := sandbox.NewHandler(newExecutor(cfg.Sandbox), cfg.Sandbox.MaxConcurrent, cfg.Sandbox.Python)
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Sandbox.Port),
				Handler: handler,
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("sandbox server starting", "port", cfg.Sandbox.Port, "capacity", cfg.Sandbox.MaxConcurrent)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down sandbox server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Sandbox.Timeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "Listen port (overrides sandbox.port)")

	return cmd
}
