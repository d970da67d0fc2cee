package provider

import (
	"fmt"
	"strings"

	"drakyn/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches to the appropriate constructor based on Config.Type.
//
// Returns an error if:
//   - The provider type is unknown
//   - The provider-specific constructor fails (e.g., invalid URL, missing API key)
//
// Example (local vLLM):
//
//	cfg := provider.Config{
//	    Type:    provider.ProviderTypeVLLM,
//	    BaseURL: "http://127.0.0.1:8000/v1",
//	    Model:   "Qwen/Qwen2.5-7B-Instruct",
//	}
//	p, err := provider.NewProvider(cfg)
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeVLLM:
		return NewVLLMProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeGollm:
		return NewGollmProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts config provider ID to factory ProviderType.
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch strings.ToLower(id) {
	case "ollama":
		return ProviderTypeOllama
	case "vllm", "local":
		return ProviderTypeVLLM
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "gollm":
		return ProviderTypeGollm
	default:
		// Fallback: pass ID as-is (factory will return error)
		return ProviderType(id)
	}
}

// ParseModelID splits a model identifier into the backend that serves it and
// the name the backend expects.
//
// Mappings:
//   - "ollama/llama3.1"                 → ollama, "llama3.1"
//   - "vllm/Qwen/Qwen2.5-7B-Instruct"   → vllm, "Qwen/Qwen2.5-7B-Instruct"
//   - "openrouter/meta-llama/llama-3.2" → openrouter, "meta-llama/llama-3.2"
//   - "gollm/groq/llama-3.1-8b-instant" → gollm, "groq/llama-3.1-8b-instant"
//   - "claude-sonnet-4-5-20250929"      → anthropic (bare claude-* names)
//   - "gpt-4o-mini", "o3-mini"          → openai (bare gpt-* and o-series names)
func ParseModelID(id string) (ProviderType, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("model identifier is empty")
	}

	if prefix, rest, ok := strings.Cut(id, "/"); ok {
		switch kind := MapProviderIDToType(prefix); kind {
		case ProviderTypeOllama, ProviderTypeVLLM, ProviderTypeOpenRouter,
			ProviderTypeOpenAI, ProviderTypeAnthropic, ProviderTypeGollm:
			if rest == "" {
				return "", "", fmt.Errorf("model identifier %q has no model name", id)
			}
			if kind == ProviderTypeGollm && !strings.Contains(rest, "/") {
				return "", "", fmt.Errorf("gollm model identifier must be gollm/<vendor>/<model>, got %q", id)
			}
			return kind, rest, nil
		}
	}

	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, "claude-"):
		return ProviderTypeAnthropic, id, nil
	case strings.HasPrefix(lower, "gpt-"), isOpenAIReasoningModel(lower):
		return ProviderTypeOpenAI, id, nil
	}

	return "", "", fmt.Errorf("cannot infer provider for model %q (use a provider/model prefix)", id)
}

func isOpenAIReasoningModel(name string) bool {
	for _, p := range []string{"o1", "o3", "o4"} {
		if name == p || strings.HasPrefix(name, p+"-") {
			return true
		}
	}
	return false
}
