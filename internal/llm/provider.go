package llm

import (
	"context"
)

// Provider defines the interface for text-completion backends. It provides a
// unified abstraction over the different LLM services the mission planner
// can run against (OpenAI, Mistral's OpenAI-compatible API, mocks).
type Provider interface {
	// Name returns the provider name (e.g. "openai", "mock")
	Name() string

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderConfig holds the settings needed to construct a provider.
type ProviderConfig struct {
	// APIKey authenticates against the backend; falls back to the
	// provider-specific environment variable when empty.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// BaseURL overrides the backend endpoint. Pointing this at a
	// Mistral-compatible endpoint is how the planner talks to Mistral.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// DefaultModel is the model used when a request does not name one.
	DefaultModel string `mapstructure:"model" yaml:"model"`
}
