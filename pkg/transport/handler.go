package transport

import (
	"context"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// Analyzer is the contract the HTTP layer needs from the engine.
type Analyzer interface {
	// Analyze answers input by generating and running code. Execution
	// failures are reported inside the result; errors are *api.APIError
	// values for invalid input, generator failures, and contract
	// violations.
	Analyze(ctx context.Context, input string) (*api.ExecutionResult, error)

	// Chat proxies a conversation to the generator and returns the reply.
	Chat(ctx context.Context, messages []api.ChatMessage, model string) (string, error)
}
