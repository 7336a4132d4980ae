package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Janani-6874/dataagent/pkg/api"
)

func TestAnalyze_DirectAnswer(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api", api.AnalyzeRequest{Input: "what is the answer?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, readBody(t, resp))
	}

	var result map[string]any
	decodeJSON(t, resp, &result)
	if result["status"] != "success" {
		t.Fatalf("result = %v", result)
	}
	inner, _ := result["result"].(map[string]any)
	if inner["answer"] != float64(42) {
		t.Errorf("answer = %v", inner["answer"])
	}
}

func TestAnalyze_FetchesAndInjectsDataset(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api", api.AnalyzeRequest{Input: "what is the total population?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, readBody(t, resp))
	}

	var result map[string]any
	decodeJSON(t, resp, &result)
	inner, _ := result["result"].(map[string]any)
	if inner["rows"] != float64(2) || inner["total"] != float64(985000) {
		t.Errorf("result = %v", result)
	}

	code, ds := testEnv.Runner.last()
	if code != populationCode {
		t.Errorf("runner code = %q", code)
	}
	if ds == nil || len(ds.Columns) != 2 || ds.Columns[0] != "city" || ds.Data[0]["city"] != "Oslo" {
		t.Errorf("runner dataset = %#v", ds)
	}
}

func TestAnalyze_ExecutionFailureIsAResult(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api", api.AnalyzeRequest{Input: "make it fail"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result api.ExecutionResult
	decodeJSON(t, resp, &result)
	if result.Status != api.StatusError || result.Reason != api.FailureExit {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(result.Message, "ValueError: boom") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStatus int
		wantType   api.ErrorType
	}{
		{"blank input", "  ", http.StatusBadRequest, api.ErrorTypeInvalidRequest},
		{"prose instead of JSON", "greet me", http.StatusBadGateway, api.ErrorTypeContractError},
		{"backend outage", "outage please", http.StatusBadGateway, api.ErrorTypeModelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, testEnv.BaseURL()+"/api", api.AnalyzeRequest{Input: tt.input})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, readBody(t, resp))
			}
			var errResp api.ErrorResponse
			decodeJSON(t, resp, &errResp)
			if errResp.Error == nil || errResp.Error.Type != tt.wantType {
				t.Errorf("error = %+v, want type %s", errResp.Error, tt.wantType)
			}
		})
	}
}

func TestAnalyze_ContractErrorCarriesRawOutput(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api", api.AnalyzeRequest{Input: "greet me"})

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || errResp.Error.Raw != "Hello! How can I help?" {
		t.Errorf("error = %+v", errResp.Error)
	}
}

func TestChat(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api/chat", api.ChatRequest{
		Messages: []api.ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "how are you?"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, readBody(t, resp))
	}

	var chat api.ChatResponse
	decodeJSON(t, resp, &chat)
	if chat.Reply != "echo: how are you?" {
		t.Errorf("reply = %q", chat.Reply)
	}
}

func TestChat_MissingMessages(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/api/chat", map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
