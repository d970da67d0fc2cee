package provider

import (
	"context"
	"fmt"

	"drakyn/config"
	"drakyn/model"
	"drakyn/ollama"
)

// OllamaProvider wraps the ollama.Client to implement the Provider interface.
//
// This provider handles the conversion between Drakyn's provider-agnostic
// messages and Ollama's api.Message, and forwards sampling parameters as
// Ollama options (temperature, num_predict, top_p, stop).
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The model name to use (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Complete implements Provider.Complete with a single non-streaming chat call.
func (p *OllamaProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Ollama complete: model=%s messages=%d tools=%d", p.client.GetModel(), len(messages), len(tools))
	}

	text, err := p.client.Complete(ctx, ConvertToOllamaMessages(messages, len(tools) > 0), ollama.Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
		Stop:        cfg.Stop,
	})
	if err != nil {
		return "", classifyError("ollama", err)
	}
	return text, nil
}

// ListModels implements Provider.ListModels as a direct passthrough.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return p.client.ListModels(ctx)
}

// GetModel implements Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// Ping implements Provider.Ping.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("Ollama ping failed: %w", err)
	}
	return nil
}
