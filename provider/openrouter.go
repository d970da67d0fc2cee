package provider

import (
	"context"
	"fmt"
	"strings"

	"drakyn/ollama"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "meta-llama/llama-3.2-90b-instruct"
)

// OpenRouterProvider is an OpenAI-compatible provider whose model names carry
// a vendor prefix ("anthropic/claude-sonnet-4"). Completion is shared with
// OpenAIProvider; only model listing differs.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider requires an API key. model keeps its vendor prefix.
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenRouterProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = defaultOpenRouterModel
	}

	return &OpenRouterProvider{
		OpenAIProvider: &OpenAIProvider{
			client: openai.NewClient(
				option.WithBaseURL(baseURL),
				option.WithAPIKey(apiKey),
				option.WithMaxRetries(0),
				option.WithHeader("X-Title", "drakyn"),
			),
			name:    "openrouter",
			model:   model,
			baseURL: baseURL,
		},
	}, nil
}

// ListModels reports display names without the vendor prefix; InternalName
// keeps the full ID used in requests.
func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	models, err := p.OpenAIProvider.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range models {
		models[i].Name = stripProviderPrefix(models[i].InternalName)
	}
	return models, nil
}

// "meta-llama/llama-3.2-90b-instruct" → "llama-3.2-90b-instruct"
func stripProviderPrefix(modelName string) string {
	if _, name, found := strings.Cut(modelName, "/"); found {
		return name
	}
	return modelName
}
