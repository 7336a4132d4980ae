package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/contract"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/observability"
	"github.com/Janani-6874/dataagent/pkg/provider"
	"github.com/Janani-6874/dataagent/pkg/sandbox"
)

// Engine turns a question into an executed analysis. It is safe for
// concurrent use; requests share only the provider, the runner, and the
// executors.
type Engine struct {
	provider provider.Provider
	runner   sandbox.Runner
	cfg      Config
}

// New creates an Engine. The provider and runner must not be nil.
func New(p provider.Provider, runner sandbox.Runner, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("engine: runner must not be nil")
	}
	switch cfg.Strategy {
	case "":
		cfg.Strategy = StrategySingle
	case StrategySingle, StrategyLoop:
	default:
		return nil, fmt.Errorf("engine: unknown strategy %q", cfg.Strategy)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("engine: model must not be empty")
	}
	return &Engine{
		provider: p,
		runner:   runner,
		cfg:      cfg,
	}, nil
}

// Analyze asks the generator for code answering input, runs it, and
// returns the execution result as-is. Errors are *api.APIError values for
// invalid input, generator failures, and contract violations.
func (e *Engine) Analyze(ctx context.Context, input string) (*api.ExecutionResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, api.NewInvalidRequestError("input", "input is required")
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	messages := []provider.ProviderMessage{
		{Role: provider.RoleSystem, Content: e.cfg.systemPrompt()},
		{Role: provider.RoleUser, Content: input},
	}

	gen, err := e.generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	task, err := parseTask(gen.text)
	if err != nil {
		return nil, err
	}
	debug.Log("engine", "generated task", "narrative", debug.Truncate(task.Narrative, 200),
		"code", debug.Truncate(task.Code, 200))

	ds := e.injected(gen.dataset)
	result := e.runner.Run(ctx, task.Code, ds, e.cfg.ExecTimeout)

	for attempt := 1; attempt <= e.cfg.RepairAttempts && repairable(result); attempt++ {
		slog.Info("repairing failed execution", "attempt", attempt, "reason", result.Reason)

		messages = append(gen.messages,
			provider.ProviderMessage{Role: provider.RoleAssistant, Content: gen.text},
			provider.ProviderMessage{Role: provider.RoleUser, Content: repairPrompt(result)},
		)
		next, err := e.generate(ctx, messages)
		if err != nil {
			slog.Warn("repair generation failed", "attempt", attempt, "error", err)
			break
		}
		nextTask, err := parseTask(next.text)
		if err != nil {
			slog.Warn("repair output rejected", "attempt", attempt, "error", err)
			break
		}
		if next.dataset != nil {
			ds = e.injected(next.dataset)
		}
		gen = next
		result = e.runner.Run(ctx, nextTask.Code, ds, e.cfg.ExecTimeout)
	}

	return result, nil
}

// Chat proxies a plain conversation to the generator and returns the reply
// text. An empty model selects the configured chat model.
func (e *Engine) Chat(ctx context.Context, messages []api.ChatMessage, model string) (string, error) {
	if len(messages) == 0 {
		return "", api.NewInvalidRequestError("messages", "messages are required")
	}
	if model == "" {
		model = e.cfg.chatModel()
	}

	provMsgs := make([]provider.ProviderMessage, 0, len(messages))
	for i, m := range messages {
		switch m.Role {
		case provider.RoleSystem, provider.RoleUser, provider.RoleAssistant:
		default:
			return "", api.NewInvalidRequestError(fmt.Sprintf("messages[%d].role", i),
				fmt.Sprintf("unsupported role %q", m.Role))
		}
		provMsgs = append(provMsgs, provider.ProviderMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := e.complete(ctx, e.newRequest(model, provMsgs, nil))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// parseTask applies the output contract to the generator's final text.
func parseTask(text string) (*api.GeneratedTask, error) {
	task, err := contract.Parse(text)
	if err != nil {
		observability.ContractFailuresTotal.WithLabelValues("parse").Inc()
		var pe *contract.ParseError
		if errors.As(err, &pe) {
			return nil, api.NewContractError(pe.Error(), pe.Raw)
		}
		return nil, api.NewContractError(err.Error(), text)
	}
	if err := task.Validate(); err != nil {
		observability.ContractFailuresTotal.WithLabelValues("missing_code").Inc()
		return nil, api.NewContractError("Invalid LLM response", text)
	}
	return task, nil
}

func (e *Engine) injected(ds *api.Dataset) *api.Dataset {
	if !e.cfg.InjectDataset {
		return nil
	}
	return ds
}

// repairable reports whether a failure is the code's fault and may be
// fixed by regenerating it.
func repairable(res *api.ExecutionResult) bool {
	if res.OK() {
		return false
	}
	switch res.Reason {
	case api.FailureExit, api.FailureParse, api.FailureTimeout:
		return true
	default:
		return false
	}
}

func repairPrompt(res *api.ExecutionResult) string {
	return fmt.Sprintf("The code failed (%s):\n%s\n\nReturn corrected JSON with 'questions' and 'code'.",
		res.Reason, debug.Truncate(res.Message, 4000))
}
