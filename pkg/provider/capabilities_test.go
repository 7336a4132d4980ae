package provider

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Janani-6874/dataagent/pkg/api"
)

func TestValidateCapabilities(t *testing.T) {
	user := []ProviderMessage{{Role: RoleUser, Content: "hello"}}
	fetch := []ProviderTool{{Type: "function", Function: ProviderFunctionDef{Name: "fetch_dataset"}}}

	tests := []struct {
		name      string
		caps      ProviderCapabilities
		req       *ProviderRequest
		wantErr   bool
		wantParam string
	}{
		{
			name: "text request with minimal caps",
			caps: ProviderCapabilities{},
			req:  &ProviderRequest{Model: "test", Messages: user},
		},
		{
			name:      "missing model",
			caps:      ProviderCapabilities{},
			req:       &ProviderRequest{Messages: user},
			wantErr:   true,
			wantParam: "model",
		},
		{
			name:      "no messages",
			caps:      ProviderCapabilities{},
			req:       &ProviderRequest{Model: "test"},
			wantErr:   true,
			wantParam: "messages",
		},
		{
			name:      "tools request without tool calling support",
			caps:      ProviderCapabilities{},
			req:       &ProviderRequest{Model: "test", Messages: user, Tools: fetch},
			wantErr:   true,
			wantParam: "tools",
		},
		{
			name: "tools request with tool calling support",
			caps: ProviderCapabilities{ToolCalling: true},
			req:  &ProviderRequest{Model: "test", Messages: user, Tools: fetch},
		},
		{
			name:      "JSON output without support",
			caps:      ProviderCapabilities{ToolCalling: true},
			req:       &ProviderRequest{Model: "test", Messages: user, ResponseFormat: ResponseFormatJSON},
			wantErr:   true,
			wantParam: "response_format",
		},
		{
			name: "JSON output with support",
			caps: ProviderCapabilities{JSONOutput: true},
			req:  &ProviderRequest{Model: "test", Messages: user, ResponseFormat: ResponseFormatJSON},
		},
		{
			name:      "unknown response format",
			caps:      ProviderCapabilities{JSONOutput: true},
			req:       &ProviderRequest{Model: "test", Messages: user, ResponseFormat: "xml"},
			wantErr:   true,
			wantParam: "response_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCapabilities(tt.caps, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if err.Type != api.ErrorTypeInvalidRequest {
					t.Errorf("expected error type %q, got %q", api.ErrorTypeInvalidRequest, err.Type)
				}
				if err.Param != tt.wantParam {
					t.Errorf("expected param %q, got %q", tt.wantParam, err.Param)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestToolsFromDefinitions(t *testing.T) {
	params := json.RawMessage(`{"type":"object","properties":{"url":{"type":"string"}}}`)
	defs := []api.ToolDefinition{
		{Type: "function", Name: "fetch_dataset", Description: "Fetch a URL", Parameters: params},
		{Type: "function"},
	}

	tools := ToolsFromDefinitions(defs)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	got := tools[0]
	if got.Type != "function" || got.Function.Name != "fetch_dataset" || got.Function.Description != "Fetch a URL" {
		t.Errorf("unexpected tool %+v", got)
	}
	if string(got.Function.Parameters) != string(params) {
		t.Errorf("parameters = %s", got.Function.Parameters)
	}

	if ToolsFromDefinitions(nil) != nil {
		t.Error("expected nil for no definitions")
	}
}

func TestAssistantMessage(t *testing.T) {
	resp := &ProviderResponse{
		Text: "thinking",
		ToolCalls: []ProviderToolCall{{
			ID: "call_1", Type: "function",
			Function: ProviderFunctionCall{Name: "fetch_dataset", Arguments: `{"url":"x"}`},
		}},
	}
	msg := resp.AssistantMessage()
	if msg.Role != RoleAssistant || msg.Content != "thinking" || len(msg.ToolCalls) != 1 {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   int
		message  string
		wantType api.ErrorType
		wantMsg  string
	}{
		{http.StatusBadRequest, "", api.ErrorTypeInvalidRequest, "invalid request to backend"},
		{http.StatusUnauthorized, "bad key", api.ErrorTypeServerError, "bad key"},
		{http.StatusForbidden, "", api.ErrorTypeServerError, "backend authentication failed"},
		{http.StatusNotFound, "no such model", api.ErrorTypeNotFound, "no such model"},
		{http.StatusTooManyRequests, "", api.ErrorTypeTooManyRequests, "backend rate limit exceeded"},
		{http.StatusBadGateway, "", api.ErrorTypeModelError, "backend server error (HTTP 502)"},
		{http.StatusConflict, "", api.ErrorTypeServerError, "unexpected backend error (HTTP 409)"},
	}
	for _, tt := range tests {
		err := StatusError(tt.status, tt.message)
		if err.Type != tt.wantType || err.Message != tt.wantMsg {
			t.Errorf("StatusError(%d, %q) = %s/%q, want %s/%q",
				tt.status, tt.message, err.Type, err.Message, tt.wantType, tt.wantMsg)
		}
	}
}

func TestNetworkError(t *testing.T) {
	err := NetworkError(errors.New("connection refused"))
	if err.Type != api.ErrorTypeModelError {
		t.Errorf("expected model_error, got %s", err.Type)
	}
	if err.Message != "backend connection error: connection refused" {
		t.Errorf("unexpected message %q", err.Message)
	}
}
