package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Janani-6874/dataagent/pkg/tools/builtins/fetchdataset"
	"github.com/Janani-6874/dataagent/pkg/tools/mcp"
	"github.com/Janani-6874/dataagent/pkg/tools/registry"
)

func newMCPCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose fetch_dataset as an MCP server",
		Long: `Serve the fetch_dataset tool over the Model Context Protocol. The server
speaks stdio by default; with --http it serves the streamable HTTP
transport at ADDR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			tools := registry.New()
			tools.Register(fetchdataset.New(newNormalizer(cfg.Fetch)))
			defer tools.Close()

			server := mcp.NewServer("", tools)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if addr == "" {
				return mcp.ServeStdio(ctx, server)
			}

			srv := &http.Server{Addr: addr, Handler: mcp.HTTPHandler(server)}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("MCP server starting", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			return srv.Shutdown(context.Background())
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "Serve streamable HTTP on this address instead of stdio")

	return cmd
}
