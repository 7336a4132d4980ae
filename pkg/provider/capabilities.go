package provider

import (
	"github.com/Janani-6874/dataagent/pkg/api"
)

// ValidateCapabilities checks whether the given request is compatible with
// the provider's declared capabilities. Returns an APIError identifying
// the specific unsupported feature, or nil if the request is compatible.
func ValidateCapabilities(caps ProviderCapabilities, req *ProviderRequest) *api.APIError {
	if req.Model == "" {
		return api.NewInvalidRequestError("model", "model is required")
	}

	if len(req.Messages) == 0 {
		return api.NewInvalidRequestError("messages", "at least one message is required")
	}

	if len(req.Tools) > 0 && !caps.ToolCalling {
		return api.NewInvalidRequestError("tools",
			"the configured provider does not support tool calling")
	}

	switch req.ResponseFormat {
	case "":
	case ResponseFormatJSON:
		if !caps.JSONOutput {
			return api.NewInvalidRequestError("response_format",
				"the configured provider does not support JSON output mode")
		}
	default:
		return api.NewInvalidRequestError("response_format",
			"unknown response format "+req.ResponseFormat)
	}

	return nil
}
