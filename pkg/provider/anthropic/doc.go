// Package anthropic implements provider.Provider on the Anthropic Messages
// API through the official SDK.
package anthropic
