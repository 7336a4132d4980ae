package provider

import (
	"encoding/json"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Tool choice values understood by every adapter.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// ResponseFormatJSON asks the backend to emit a single JSON object.
const ResponseFormatJSON = "json_object"

// ProviderCapabilities declares what features the backend supports.
// Used by the engine for early request validation.
type ProviderCapabilities struct {
	// ToolCalling indicates whether the provider supports function/tool calls.
	ToolCalling bool

	// JSONOutput indicates the backend honors ResponseFormatJSON.
	JSONOutput bool

	// MaxContextWindow is the maximum token count (0 = unknown/unlimited).
	MaxContextWindow int
}

// ProviderRequest is the backend-facing request.
type ProviderRequest struct {
	Model       string            `json:"model"`
	Messages    []ProviderMessage `json:"messages"`
	Tools       []ProviderTool    `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Stop        []string          `json:"stop,omitempty"`

	// ResponseFormat is empty or ResponseFormatJSON.
	ResponseFormat string `json:"response_format,omitempty"`
}

// ProviderMessage represents a message in the provider's conversation format.
type ProviderMessage struct {
	Role       string             `json:"role"`
	Content    string             `json:"content"`
	ToolCalls  []ProviderToolCall `json:"tool_calls,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	Name       string             `json:"name,omitempty"`
}

// ProviderToolCall represents a tool call entry in an assistant message.
type ProviderToolCall struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Function ProviderFunctionCall `json:"function"`
}

// ProviderFunctionCall holds the function name and arguments for a tool call.
type ProviderFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ProviderTool represents a tool definition in provider format.
type ProviderTool struct {
	Type     string              `json:"type"`
	Function ProviderFunctionDef `json:"function"`
}

// ProviderFunctionDef holds a function definition for tool use.
type ProviderFunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ProviderResponse is the backend's complete response: final text, tool
// calls, or both.
type ProviderResponse struct {
	Text         string             `json:"text"`
	ToolCalls    []ProviderToolCall `json:"tool_calls,omitempty"`
	Usage        api.Usage          `json:"usage"`
	Model        string             `json:"model"`
	FinishReason string             `json:"finish_reason,omitempty"`
}

// AssistantMessage returns the response as a conversation turn, so tool
// calls can be echoed back ahead of their results.
func (r *ProviderResponse) AssistantMessage() ProviderMessage {
	return ProviderMessage{
		Role:      RoleAssistant,
		Content:   r.Text,
		ToolCalls: r.ToolCalls,
	}
}

