package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Janani-6874/dataagent/pkg/api"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  *api.APIError
		want int
	}{
		{api.NewInvalidRequestError("input", "input is required"), http.StatusBadRequest},
		{api.NewNotFoundError("no such model"), http.StatusNotFound},
		{api.NewTooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{api.NewContractError("Invalid LLM response", "{}"), http.StatusBadGateway},
		{api.NewModelError("backend connection error"), http.StatusBadGateway},
		{api.NewServerError("boom"), http.StatusInternalServerError},
		{&api.APIError{Type: "mystery"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError(%s) = %d, want %d", tt.err.Type, got, tt.want)
			}
		})
	}
}

func TestAsAPIError(t *testing.T) {
	contract := api.NewContractError("Invalid LLM response", "raw")
	tests := []struct {
		name string
		err  error
		want api.ErrorType
	}{
		{"api error", contract, api.ErrorTypeContractError},
		{"wrapped api error", fmt.Errorf("analyze: %w", contract), api.ErrorTypeContractError},
		{"deadline", fmt.Errorf("complete: %w", context.DeadlineExceeded), api.ErrorTypeModelError},
		{"cancelled", context.Canceled, api.ErrorTypeServerError},
		{"plain", errors.New("disk full"), api.ErrorTypeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AsAPIError(tt.err); got.Type != tt.want {
				t.Errorf("type = %s, want %s", got.Type, tt.want)
			}
		})
	}
}

func TestWriteAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, api.NewContractError("could not parse LLM response as JSON", "not json"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Raw != "not json" || body.Error.Type != api.ErrorTypeContractError {
		t.Errorf("body = %+v", body.Error)
	}
}
