package api

import (
	"errors"
	"fmt"
)

// ErrorType classifies an APIError. Transports map each type to a status.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeModelError      ErrorType = "model_error"
	ErrorTypeContractError   ErrorType = "contract_error"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
)

// APIError is the error returned to API clients. Param names the offending
// request field for invalid requests; Raw carries the generator text a
// contract error was raised on.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
	Raw     string    `json:"raw,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the error this one was built from, if any.
func (e *APIError) Unwrap() error { return e.cause }

// WithCause records err as the underlying cause and returns e.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// IsErrorType reports whether err is, or wraps, an APIError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == t
}

func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{Type: ErrorTypeInvalidRequest, Param: param, Message: message}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}

// NewModelError reports a generator backend that failed, timed out or
// produced no usable answer.
func NewModelError(message string) *APIError {
	return &APIError{Type: ErrorTypeModelError, Message: message}
}

// NewContractError reports generator output that is not a usable
// {narrative, code} object. raw is the text as the generator sent it.
func NewContractError(message, raw string) *APIError {
	return &APIError{Type: ErrorTypeContractError, Message: message, Raw: raw}
}

func NewTooManyRequestsError(message string) *APIError {
	return &APIError{Type: ErrorTypeTooManyRequests, Message: message}
}
