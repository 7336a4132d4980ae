package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Janani-6874/dataagent/pkg/api"
)

func newAskCmd() *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask questions interactively",
		Long: `Prompt for a question, run the analysis, and render the JSON result as a
tree. The prompt repeats until the input is empty. With --question a single
question is answered and the command exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if question != "" {
				return askOnce(ctx, a, question)
			}

			pterm.DefaultHeader.Println("dataagent")
			for {
				input, err := pterm.DefaultInteractiveTextInput.Show("Ask me a question")
				if err != nil {
					return err
				}
				if strings.TrimSpace(input) == "" {
					return nil
				}
				if err := askOnce(ctx, a, input); err != nil {
					pterm.Error.Println(err)
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Answer one question and exit")

	return cmd
}

func askOnce(ctx context.Context, a *app, question string) error {
	spinner, _ := pterm.DefaultSpinner.Start("Thinking...")

	result, err := a.engine.Analyze(ctx, question)
	if err != nil {
		spinner.Fail("Analysis failed")
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Raw != "" {
			pterm.Warning.Println("Generator output:\n" + apiErr.Raw)
		}
		if api.IsErrorType(err, api.ErrorTypeModelError) {
			pterm.Info.Printfln("Check engine.backend_url and the API key for provider %q.", a.cfg.Engine.Provider)
		}
		return err
	}

	if result.OK() {
		spinner.Success("Done")
	} else {
		spinner.Warning(fmt.Sprintf("Execution failed (%s)", result.Reason))
	}
	return pterm.DefaultTree.WithRoot(resultTree(result)).Render()
}
