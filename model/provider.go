package model

import (
	"context"

	"drakyn/ollama"
)

// Provider abstracts completion backends (Ollama, vLLM, OpenAI, OpenRouter,
// Anthropic, gollm) behind the loop's provider-agnostic types.
//
// This interface lives in the model package (not provider) so that the agent
// and server packages can depend on it without importing every SDK.
type Provider interface {
	// Complete returns the raw completion text for messages. Tools are
	// described to the model textually; backends never receive native
	// function-calling definitions.
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition, cfg CompletionConfig) (string, error)

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)

	// GetModel returns the model name used for API calls.
	GetModel() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
