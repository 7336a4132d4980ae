package openaicompat

import (
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/provider"
)

// errorMessagePaths locate the message in the error bodies of the
// backends in use: OpenAI and vLLM, Gemini's one-element array, and
// servers that put a bare message or detail at the top level.
var errorMessagePaths = []string{"error.message", "0.error.message", "message", "detail"}

// MapHTTPError converts a non-2xx response into an APIError, using the
// backend's own message when the body carries one.
func MapHTTPError(resp *http.Response) *api.APIError {
	return provider.StatusError(resp.StatusCode, ExtractErrorMessage(resp.Body))
}

// MapNetworkError converts a transport failure into an APIError.
func MapNetworkError(err error) *api.APIError {
	return provider.NetworkError(err)
}

// ExtractErrorMessage returns the error message in body, or "" when none
// of the known shapes match. At most 4 KiB is read.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || !gjson.ValidBytes(data) {
		return ""
	}
	for _, path := range errorMessagePaths {
		if v := gjson.GetBytes(data, path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
