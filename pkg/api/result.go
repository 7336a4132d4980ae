package api

import (
	"bytes"
	"encoding/json"
)

// ExecutionStatus tags an ExecutionResult.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusError   ExecutionStatus = "error"
)

// FailureReason classifies why an execution failed.
type FailureReason string

const (
	// FailureParse: the process exited zero but stdout was not the result envelope.
	FailureParse FailureReason = "parse"
	// FailureExit: the process exited non-zero; Message is its stderr.
	FailureExit FailureReason = "exit"
	// FailureTimeout: the wall-clock limit elapsed and the process tree was killed.
	FailureTimeout FailureReason = "timeout"
	// FailureSpawn: the script could not be written or the interpreter started.
	FailureSpawn FailureReason = "spawn"
	// FailureCancelled: the caller cancelled before the process finished.
	FailureCancelled FailureReason = "cancelled"
)

// ExecutionResult is the outcome of one sandbox execution. Exactly one
// of Result (on success) or Message (on error) is meaningful.
type ExecutionResult struct {
	Status  ExecutionStatus `json:"status"`
	Result  map[string]any  `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
	Reason  FailureReason   `json:"reason,omitempty"`
}

// Succeeded builds a success result. A nil mapping is reported as empty.
func Succeeded(result map[string]any) *ExecutionResult {
	if result == nil {
		result = map[string]any{}
	}
	return &ExecutionResult{Status: StatusSuccess, Result: result}
}

// Failed builds an error result.
func Failed(reason FailureReason, message string) *ExecutionResult {
	return &ExecutionResult{Status: StatusError, Reason: reason, Message: message}
}

// OK reports whether the execution succeeded.
func (r *ExecutionResult) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// MarshalJSON emits only the fields belonging to the result's tag, so a
// success with no results still carries "result": {}.
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	if r.Status == StatusSuccess {
		result := r.Result
		if result == nil {
			result = map[string]any{}
		}
		return json.Marshal(struct {
			Status ExecutionStatus `json:"status"`
			Result map[string]any  `json:"result"`
		}{r.Status, result})
	}
	return json.Marshal(struct {
		Status  ExecutionStatus `json:"status"`
		Message string          `json:"message"`
		Reason  FailureReason   `json:"reason,omitempty"`
	}{r.Status, r.Message, r.Reason})
}

// DecodeExecutionResult decodes a result body, keeping integers in Result
// exact as int64.
func DecodeExecutionResult(data []byte) (*ExecutionResult, error) {
	var r ExecutionResult
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	for k, v := range r.Result {
		r.Result[k] = RestoreNumber(v)
	}
	if r.Status == StatusSuccess && r.Result == nil {
		r.Result = map[string]any{}
	}
	return &r, nil
}
