// Package provider implements the completion backends used by the agent loop.
//
// Drakyn talks to several LLM backends (local Ollama, a local vLLM/OpenAI-compatible
// server, OpenAI, OpenRouter, Anthropic and anything gollm supports) through the
// single model.Provider interface. The loop only ever asks for raw completion
// text; tool use is negotiated textually through the system prompt, so no
// adapter sends native function-calling definitions.
//
// # Message Rendering
//
// All adapters share one conversion path (toTurns in conversions.go):
//   - system messages are split out (Anthropic, gollm) or sent first (OpenAI, Ollama)
//   - tool messages become user turns of the form "Tool '<name>' returned:\n<content>"
//   - when tools are available, the JSON tool-call reminder is appended to the
//     most recent tool turn
//
// # Errors
//
// Every adapter reports failures as *model.ProviderError (see errors.go), so the
// loop and the retry decorator can reason about auth, rate limit, connection,
// timeout and backend failures without knowing which SDK produced them.
//
// # Usage
//
//	kind, name, err := provider.ParseModelID("ollama/qwen2.5:7b")
//	if err != nil {
//	    // handle error
//	}
//	p, err := provider.NewProvider(provider.Config{
//	    Type:  kind,
//	    Model: name,
//	})
//	text, err := p.Complete(ctx, messages, tools, cfg.Completion())
package provider

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeVLLM       ProviderType = "vllm"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeGollm      ProviderType = "gollm"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Optional for Ollama and vLLM
}
