// Command dataagent answers natural-language data questions by having a
// generator write Python, running it in a sandbox, and returning the
// structured result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Global flags.
var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dataagent",
		Short: "Answer data questions with generated Python",
		Long: `dataagent asks a language model for Python that answers a question,
fetches and normalizes any dataset the model needs, runs the code in a
sandboxed interpreter, and returns the JSON results.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $DATAAGENT_CONFIG, ./config.yaml, /etc/dataagent/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (TRACE, DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSandboxCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newMCPCmd())

	return root
}
