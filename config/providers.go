package config

import (
	"os"
	"strings"
)

// ProviderConfig is one [[providers]] entry.
type ProviderConfig struct {
	ID        string `toml:"id"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
	Enabled   bool   `toml:"enabled"`
}

// DefaultProviders mirrors the [[providers]] entries of the generated template.
func DefaultProviders() []ProviderConfig {
	ids := []string{"ollama", "vllm", "openai", "openrouter", "anthropic"}
	providers := make([]ProviderConfig, 0, len(ids))
	for _, id := range ids {
		providers = append(providers, ProviderConfig{
			ID:        id,
			BaseURL:   getProviderDefaultBaseURL(id),
			APIKeyEnv: defaultAPIKeyEnv(id),
			Enabled:   id == "ollama" || id == "anthropic",
		})
	}
	return providers
}

// ProviderSettings returns the [[providers]] entry for id, or a default
// entry when none is configured.
func (c *Config) ProviderSettings(id string) ProviderConfig {
	for _, p := range c.Providers {
		if strings.EqualFold(p.ID, id) {
			if p.BaseURL == "" {
				p.BaseURL = getProviderDefaultBaseURL(p.ID)
			}
			return p
		}
	}
	return ProviderConfig{
		ID:        id,
		BaseURL:   getProviderDefaultBaseURL(id),
		APIKeyEnv: defaultAPIKeyEnv(id),
	}
}

// APIKey resolves the API key for a provider from its api_key_env variable,
// falling back to the conventional variable for known providers.
func (c *Config) APIKey(id string) string {
	settings := c.ProviderSettings(id)
	if settings.APIKeyEnv != "" {
		if key := os.Getenv(settings.APIKeyEnv); key != "" {
			return key
		}
	}
	if env := defaultAPIKeyEnv(id); env != "" {
		return os.Getenv(env)
	}
	return ""
}

// ProviderDisplayName returns the human-readable name of a provider ID.
func ProviderDisplayName(providerID string) string {
	switch providerID {
	case "ollama":
		return "Ollama"
	case "vllm":
		return "vLLM"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	case "gollm":
		return "gollm"
	default:
		return providerID
	}
}

// getProviderDefaultBaseURL returns the default base URL for a provider
func getProviderDefaultBaseURL(providerID string) string {
	switch providerID {
	case "ollama":
		return "http://localhost:11434"
	case "vllm":
		return "http://127.0.0.1:8002/v1"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

func defaultAPIKeyEnv(providerID string) string {
	switch providerID {
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "vllm":
		return "VLLM_API_KEY"
	default:
		return ""
	}
}
