// Package openaicompat implements provider.Provider for any backend that
// speaks the OpenAI Chat Completions protocol: OpenAI itself, Gemini's
// OpenAI endpoint, vLLM, LiteLLM, and similar servers. It handles request
// serialization, response parsing, and error mapping.
package openaicompat
