package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/provider"
)

// defaultMaxTokens is used when the request does not set MaxTokens, which
// the Messages API requires.
const defaultMaxTokens = 4096

// Config holds configuration for the Anthropic adapter.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL overrides the API root. Empty uses the SDK default.
	BaseURL string

	// Timeout for individual HTTP requests. Defaults to 120s.
	Timeout time.Duration

	// MaxRetries is passed to the SDK, which retries rate limits,
	// overloads and connection failures with backoff.
	MaxRetries int
}

// Provider implements provider.Provider for Claude models.
type Provider struct {
	client     sdk.Client
	httpClient *http.Client
	caps       provider.ProviderCapabilities
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: APIKey is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client:     sdk.NewClient(opts...),
		httpClient: httpClient,
		caps: provider.ProviderCapabilities{
			ToolCalling: true,
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "anthropic"
}

// Capabilities returns what this provider supports.
func (p *Provider) Capabilities() provider.ProviderCapabilities {
	return p.caps
}

// Complete sends one Messages API request.
func (p *Provider) Complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	params := buildParams(req)

	debug.Log("providers", "anthropic request",
		"model", req.Model, "messages", len(params.Messages), "tools", len(params.Tools))

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	resp := parseResponse(msg)
	debug.Log("providers", "anthropic response",
		"model", resp.Model, "stop_reason", resp.FinishReason,
		"tool_calls", len(resp.ToolCalls), "text", debug.Truncate(resp.Text, 200))
	return resp, nil
}

// Close releases provider resources.
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func buildParams(req *provider.ProviderRequest) sdk.MessageNewParams {
	var system []string
	messages := make([]sdk.MessageParam, 0, len(req.Messages))

	// Consecutive tool results must share one user turn.
	var pendingResults []sdk.ContentBlockParamUnion
	flushResults := func() {
		if len(pendingResults) > 0 {
			messages = append(messages, sdk.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, m := range req.Messages {
		switch m.Role {
		case provider.RoleSystem:
			system = append(system, m.Content)
		case provider.RoleTool:
			pendingResults = append(pendingResults, sdk.NewToolResultBlock(m.ToolCallID, m.Content, false))
		case provider.RoleAssistant:
			flushResults()
			blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, toolInput(tc.Function.Arguments), tc.Function.Name))
			}
			if len(blocks) > 0 {
				messages = append(messages, sdk.NewAssistantMessage(blocks...))
			}
		default:
			flushResults()
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}
	flushResults()

	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = int64(*req.MaxTokens)
	}

	params := sdk.MessageNewParams{
		Model:         sdk.Model(req.Model),
		Messages:      messages,
		MaxTokens:     maxTokens,
		StopSequences: req.Stop,
	}

	if len(system) > 0 {
		params.System = []sdk.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}

	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}

	if len(req.Tools) > 0 {
		params.Tools = make([]sdk.ToolUnionParam, 0, len(req.Tools))
		for _, t := range req.Tools {
			tool := sdk.ToolParam{
				Name:        t.Function.Name,
				InputSchema: inputSchema(t.Function.Parameters),
			}
			if t.Function.Description != "" {
				tool.Description = param.NewOpt(t.Function.Description)
			}
			params.Tools = append(params.Tools, sdk.ToolUnionParam{OfTool: &tool})
		}

		switch req.ToolChoice {
		case provider.ToolChoiceNone:
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}
		case provider.ToolChoiceRequired:
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}
		case provider.ToolChoiceAuto:
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
		}
	}

	return params
}

// inputSchema splits a JSON Schema object into the properties and
// required list the Messages API expects.
func inputSchema(schema json.RawMessage) sdk.ToolInputSchemaParam {
	out := sdk.ToolInputSchemaParam{Properties: map[string]any{}}
	if len(schema) == 0 {
		return out
	}
	parsed := gjson.ParseBytes(schema)
	if props := parsed.Get("properties"); props.IsObject() {
		out.Properties = props.Value()
	}
	for _, r := range parsed.Get("required").Array() {
		out.Required = append(out.Required, r.String())
	}
	return out
}

// toolInput decodes tool call arguments, falling back to an empty object
// when they are not a JSON object.
func toolInput(arguments string) map[string]any {
	var input map[string]any
	if err := json.Unmarshal([]byte(arguments), &input); err != nil || input == nil {
		return map[string]any{}
	}
	return input
}

func parseResponse(msg *sdk.Message) *provider.ProviderResponse {
	resp := &provider.ProviderResponse{
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: api.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	var text strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}
			resp.ToolCalls = append(resp.ToolCalls, provider.ProviderToolCall{
				ID:   block.ID,
				Type: "function",
				Function: provider.ProviderFunctionCall{
					Name:      block.Name,
					Arguments: args,
				},
			})
		}
	}
	resp.Text = text.String()

	return resp
}

// mapError converts SDK errors into APIErrors, extracting the backend's
// message from the error body when present.
func mapError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		message := gjson.Get(apiErr.RawJSON(), "error.message").String()
		return provider.StatusError(apiErr.StatusCode, message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return provider.NetworkError(err)
}
