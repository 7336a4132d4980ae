// Package provider defines the protocol-agnostic interface to the code
// generator. Adapters (openaicompat, anthropic) translate the shared
// ProviderRequest and ProviderResponse types to their backend's wire
// format, so the engine never sees protocol details.
package provider
