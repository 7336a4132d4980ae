package api

import (
	"encoding/json"
	"testing"
)

func TestExecutionResultJSON(t *testing.T) {
	tests := []struct {
		name   string
		result *ExecutionResult
		want   string
	}{
		{
			"success",
			Succeeded(map[string]any{"x": 1}),
			`{"status":"success","result":{"x":1}}`,
		},
		{
			"success without results",
			Succeeded(nil),
			`{"status":"success","result":{}}`,
		},
		{
			"timeout",
			Failed(FailureTimeout, "Execution timed out after 5 seconds"),
			`{"status":"error","message":"Execution timed out after 5 seconds","reason":"timeout"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("JSON = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestExecutionResultDecode(t *testing.T) {
	var got ExecutionResult
	if err := json.Unmarshal([]byte(`{"status":"error","message":"boom","reason":"exit"}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.OK() || got.Reason != FailureExit || got.Message != "boom" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestDecodeExecutionResult(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"large integer", `{"status":"success","result":{"id":9007199254740993,"x":1.5}}`, `{"status":"success","result":{"id":9007199254740993,"x":1.5}}`},
		{"missing result", `{"status":"success"}`, `{"status":"success","result":{}}`},
		{"failure", `{"status":"error","message":"boom","reason":"exit"}`, `{"status":"error","message":"boom","reason":"exit"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeExecutionResult([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeExecutionResult: %v", err)
			}
			got, _ := json.Marshal(res)
			if string(got) != tt.want {
				t.Errorf("round trip = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := DecodeExecutionResult([]byte(`{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
