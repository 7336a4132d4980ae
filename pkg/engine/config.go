package engine

import (
	"time"

	"github.com/Janani-6874/dataagent/pkg/tools"
)

// Strategy names accepted in Config.Strategy.
const (
	StrategySingle = "single"
	StrategyLoop   = "loop"
)

const (
	defaultMaxTurns  = 10
	defaultChatModel = "gpt-4o-mini"
)

// Config holds configuration for the engine.
type Config struct {
	// Model is the generator model for Analyze.
	Model string

	// ChatModel is used by Chat when the caller names no model.
	// Defaults to gpt-4o-mini.
	ChatModel string

	// SystemPrompt replaces DefaultSystemPrompt when non-empty.
	SystemPrompt string

	// Temperature is sent with every generator request.
	Temperature float64

	// MaxTokens caps each completion. Zero leaves it to the backend.
	MaxTokens int

	// Strategy is StrategySingle (the default) or StrategyLoop.
	Strategy string

	// MaxTurns bounds tool rounds under StrategyLoop. Zero or negative
	// means 10.
	MaxTurns int

	// RepairAttempts is how many times a failed execution is sent back to
	// the generator for corrected code.
	RepairAttempts int

	// JSONMode asks providers that support it to constrain the final
	// answer to a JSON object.
	JSONMode bool

	// InjectDataset passes the last dataset produced by a tool call to
	// the sandbox.
	InjectDataset bool

	// Timeout bounds a whole Analyze call. Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration

	// ExecTimeout is passed to the sandbox for each execution. Zero uses
	// the sandbox default.
	ExecTimeout time.Duration

	// Executors supply the tools offered to the generator.
	Executors []tools.ToolExecutor
}

func (c Config) maxTurns() int {
	if c.MaxTurns <= 0 {
		return defaultMaxTurns
	}
	return c.MaxTurns
}

// toolRounds is the number of rounds in which tool calls are executed.
func (c Config) toolRounds() int {
	if c.Strategy == StrategyLoop {
		return c.maxTurns()
	}
	return 1
}

func (c Config) systemPrompt() string {
	if c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return DefaultSystemPrompt
}

func (c Config) chatModel() string {
	if c.ChatModel != "" {
		return c.ChatModel
	}
	return defaultChatModel
}
