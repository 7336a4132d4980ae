package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/observability"
	"github.com/Janani-6874/dataagent/pkg/provider"
	"github.com/Janani-6874/dataagent/pkg/tools"
)

// generation is the outcome of one run of the tool-call cycle.
type generation struct {
	// text is the final answer.
	text string

	// dataset is the last one produced by a successful tool call.
	dataset *api.Dataset

	// messages is the conversation that produced text, including the
	// tool exchange but not the final answer.
	messages []provider.ProviderMessage
}

// generate runs the tool-call cycle. Tool rounds are bounded by the
// strategy: under "single" the request after the first round forbids
// further calls, under "loop" a response that still calls tools after
// MaxTurns rounds is a model error.
func (e *Engine) generate(ctx context.Context, messages []provider.ProviderMessage) (*generation, error) {
	defs := e.discoveredTools()
	toolDefs := provider.ToolsFromDefinitions(defs)
	rounds := e.cfg.toolRounds()

	gen := &generation{messages: messages}
	for round := 0; ; round++ {
		final := round >= rounds

		req := e.newRequest(e.cfg.Model, gen.messages, toolDefs)
		if final && e.cfg.Strategy == StrategySingle && len(toolDefs) > 0 {
			req.ToolChoice = provider.ToolChoiceNone
		}
		if e.jsonMode() && (len(toolDefs) == 0 || req.ToolChoice == provider.ToolChoiceNone) {
			req.ResponseFormat = provider.ResponseFormatJSON
		}

		resp, err := e.complete(ctx, req)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			gen.text = resp.Text
			return gen, nil
		}
		if final {
			if e.cfg.Strategy == StrategyLoop {
				return nil, api.NewModelError(fmt.Sprintf("no final answer after %d tool rounds", rounds))
			}
			slog.Warn("ignoring tool calls after the final round", "count", len(resp.ToolCalls))
			gen.text = resp.Text
			return gen, nil
		}

		calls := make([]tools.ToolCall, len(resp.ToolCalls))
		for i, tc := range resp.ToolCalls {
			calls[i] = tools.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments}
		}

		screened := tools.ScreenCalls(calls, defs)
		results := append(e.executeTools(ctx, screened.Run), screened.Refused...)

		gen.messages = append(gen.messages, resp.AssistantMessage())
		for _, r := range results {
			gen.messages = append(gen.messages, provider.ProviderMessage{
				Role:       provider.RoleTool,
				Content:    r.Output,
				ToolCallID: r.CallID,
			})
			if r.Dataset != nil && !r.IsError {
				gen.dataset = r.Dataset
			}
		}

		debug.Log("engine", "tool round complete", "round", round+1, "calls", len(calls),
			"dataset_rows", gen.dataset.Len())
	}
}

func (e *Engine) newRequest(model string, messages []provider.ProviderMessage, toolDefs []provider.ProviderTool) *provider.ProviderRequest {
	temperature := e.cfg.Temperature
	req := &provider.ProviderRequest{
		Model:       model,
		Messages:    messages,
		Tools:       toolDefs,
		Temperature: &temperature,
	}
	if len(toolDefs) > 0 {
		req.ToolChoice = provider.ToolChoiceAuto
	}
	if e.cfg.MaxTokens > 0 {
		maxTokens := e.cfg.MaxTokens
		req.MaxTokens = &maxTokens
	}
	return req
}

// jsonMode reports whether answers are requested in JSON output mode.
// Backends reject the mode alongside callable tools, so it only applies
// to requests that offer none.
func (e *Engine) jsonMode() bool {
	return e.cfg.JSONMode && e.provider.Capabilities().JSONOutput
}

// complete validates req against the provider's capabilities, calls it,
// and records provider metrics.
func (e *Engine) complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	if apiErr := provider.ValidateCapabilities(e.provider.Capabilities(), req); apiErr != nil {
		return nil, apiErr
	}

	provName := e.provider.Name()
	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	duration := time.Since(start)
	observability.ProviderLatency.WithLabelValues(provName, req.Model).Observe(duration.Seconds())

	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(provName, req.Model, "error").Inc()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, api.NewModelError(fmt.Sprintf("generator did not answer in time: %v", err))
		}
		return nil, err
	}

	observability.ProviderRequestsTotal.WithLabelValues(provName, req.Model, "success").Inc()
	observability.ProviderTokensTotal.WithLabelValues(provName, req.Model, "input").Add(float64(resp.Usage.InputTokens))
	observability.ProviderTokensTotal.WithLabelValues(provName, req.Model, "output").Add(float64(resp.Usage.OutputTokens))

	debug.Log("engine", "completion", "provider", provName, "model", req.Model,
		"tool_calls", len(resp.ToolCalls), "text", debug.Truncate(resp.Text, 200),
		"duration", duration)
	return resp, nil
}

// discoveredTools merges the tools of every executor. A name offered by
// more than one executor is listed once; findExecutor picks the first.
func (e *Engine) discoveredTools() []api.ToolDefinition {
	var defs []api.ToolDefinition
	seen := make(map[string]bool)
	for _, exec := range e.cfg.Executors {
		for _, td := range exec.DiscoveredTools() {
			if seen[td.Name] {
				continue
			}
			seen[td.Name] = true
			defs = append(defs, td)
		}
	}
	return defs
}

// executeTools runs calls concurrently and returns results in call order.
// Executor failures become error results for the generator to read.
func (e *Engine) executeTools(ctx context.Context, calls []tools.ToolCall) []tools.ToolResult {
	if len(calls) == 0 {
		return nil
	}

	results := make([]tools.ToolResult, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = e.executeTool(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) executeTool(ctx context.Context, call tools.ToolCall) (res tools.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("tool executor panicked", "tool", call.Name, "call_id", call.ID, "panic", rec)
			observability.ToolExecutionsTotal.WithLabelValues(call.Name, "panic").Inc()
			res = *tools.ErrorResult(call.ID, fmt.Sprintf("internal error: tool %q panicked", call.Name))
		}
	}()

	exec := e.findExecutor(call.Name)
	if exec == nil {
		observability.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
		return *tools.ErrorResult(call.ID, "no executor found for tool "+call.Name)
	}

	result, err := exec.Execute(ctx, call)
	if err != nil {
		slog.Warn("tool execution error",
			"tool", call.Name,
			"kind", exec.Kind().String(),
			"call_id", call.ID,
			"error", err.Error(),
		)
		return *tools.ErrorResult(call.ID, err.Error())
	}
	if result == nil {
		return *tools.ErrorResult(call.ID, "tool "+call.Name+" returned no result")
	}
	if result.CallID == "" {
		result.CallID = call.ID
	}
	return *result
}

func (e *Engine) findExecutor(name string) tools.ToolExecutor {
	for _, exec := range e.cfg.Executors {
		if exec.CanExecute(name) {
			return exec
		}
	}
	return nil
}
