package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Janani-6874/dataagent/pkg/api"
)

func newExecCmd() *cobra.Command {
	var datasetURL string

	cmd := &cobra.Command{
		Use:   "exec FILE",
		Short: "Run a Python file in the sandbox",
		Long: `Run FILE the way generated code runs: with the standard preamble, a
"results" dict, and optionally a dataset bound to df and data. The
execution result is printed as JSON. Use "-" to read the code from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			code, err := readCode(args[0])
			if err != nil {
				return err
			}

			var ds *api.Dataset
			if datasetURL != "" {
				ds, err = newNormalizer(cfg.Fetch).Normalize(cmd.Context(), datasetURL)
				if err != nil {
					return err
				}
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			res := newRunner(cfg.Sandbox).Run(ctx, code, ds, cfg.Sandbox.Timeout)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("execution failed: %s", res.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetURL, "dataset", "", "URL of a dataset to load as df and data")

	return cmd
}

func readCode(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading code: %w", err)
	}
	return string(data), nil
}
