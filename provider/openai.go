package provider

import (
	"context"
	"errors"
	"fmt"

	"drakyn/config"
	"drakyn/model"
	"drakyn/ollama"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultVLLMBaseURL   = "http://127.0.0.1:8002/v1"
)

// OpenAIProvider implements the Provider interface using OpenAI's official API.
// The same implementation serves local OpenAI-compatible servers such as vLLM
// (see NewVLLMProvider), which differ only in base URL and key handling.
type OpenAIProvider struct {
	client  openai.Client
	name    string // provider ID reported in errors and model listings
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Model to use (default: "gpt-4o-mini")
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini" // Default to affordable model
	}

	return newOpenAICompatible("openai", baseURL, apiKey, model), nil
}

// NewVLLMProvider creates a provider for a local OpenAI-compatible server.
//
// vLLM does not require a key unless started with --api-key, so apiKey may be
// empty. The model must match the name the server was launched with.
func NewVLLMProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = DefaultVLLMBaseURL
	}
	if model == "" {
		return nil, fmt.Errorf("vLLM model name is required")
	}
	if apiKey == "" {
		apiKey = "EMPTY"
	}

	return newOpenAICompatible("vllm", baseURL, apiKey, model), nil
}

func newOpenAICompatible(name, baseURL, apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // retries are handled by WithRetry
	)

	return &OpenAIProvider{
		client:  client,
		name:    name,
		model:   model,
		baseURL: baseURL,
	}
}

// Complete implements Provider.Complete with a single chat completion call.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] %s complete: model=%s messages=%d tools=%d", p.name, p.model, len(messages), len(tools))
	}
	return chatCompletion(ctx, p.client, p.name, p.model, ConvertToOpenAIMessages(messages, len(tools) > 0), cfg)
}

// chatCompletion is shared by every OpenAI-compatible backend.
func chatCompletion(ctx context.Context, client openai.Client, name, modelName string, messages []openai.ChatCompletionMessageParamUnion, cfg model.CompletionConfig) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(modelName),
		Temperature: openai.Float(cfg.Temperature),
		TopP:        openai.Float(cfg.TopP),
	}
	if cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(cfg.MaxTokens))
	}
	if len(cfg.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: cfg.Stop}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyError(name, err)
	}
	if len(resp.Choices) == 0 {
		return "", &model.ProviderError{
			Provider: name,
			Kind:     model.KindBackend,
			Err:      errors.New("completion returned no choices"),
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// ListModels implements Provider.ListModels.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	modelsPage, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models: %w", p.name, err)
	}

	result := make([]ollama.ModelInfo, 0, len(modelsPage.Data))
	for _, m := range modelsPage.Data {
		result = append(result, ollama.ModelInfo{
			Name:         m.ID,
			InternalName: m.ID,
			Size:         0, // OpenAI-compatible APIs don't report size
			Provider:     p.name,
		})
	}

	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// BaseURL returns the endpoint the provider talks to.
func (p *OpenAIProvider) BaseURL() string {
	return p.baseURL
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.name, err)
	}
	return nil
}
