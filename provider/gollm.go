package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"drakyn/config"
	"drakyn/model"
	"drakyn/ollama"

	"github.com/teilomillet/gollm"
)

// GollmProvider reaches any vendor supported by gollm (groq, mistral,
// cohere, deepseek, ...) through one adapter. Model identifiers take the form
// "<vendor>/<model>".
//
// gollm keeps sampling options on the LLM instance, so calls are serialized.
type GollmProvider struct {
	mu     sync.Mutex
	llm    gollm.LLM
	vendor string
	model  string
}

// NewGollmProvider creates a gollm-backed provider for "<vendor>/<model>".
// An empty apiKey falls back to the <VENDOR>_API_KEY environment variable.
func NewGollmProvider(apiKey, vendorModel string) (*GollmProvider, error) {
	vendor, name, ok := strings.Cut(vendorModel, "/")
	if !ok || vendor == "" || name == "" {
		return nil, fmt.Errorf("gollm model must be <vendor>/<model>, got %q", vendorModel)
	}

	if apiKey == "" {
		apiKey = os.Getenv(strings.ToUpper(vendor) + "_API_KEY")
	}

	opts := []gollm.ConfigOption{
		gollm.SetProvider(vendor),
		gollm.SetModel(name),
		gollm.SetMaxTokens(model.DefaultMaxTokens),
		gollm.SetTemperature(model.DefaultTemperature),
		gollm.SetMaxRetries(0), // retries are handled by WithRetry
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		opts = append(opts, gollm.SetAPIKey(apiKey))
	}

	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm %s client: %w", vendor, err)
	}

	return &GollmProvider{llm: llm, vendor: vendor, model: name}, nil
}

// Complete implements Provider.Complete by flattening the context into one
// gollm prompt with the system prompt passed separately.
func (p *GollmProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	system, text := renderTranscript(messages, len(tools) > 0)

	var promptOpts []gollm.PromptOption
	if system != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}
	if cfg.MaxTokens > 0 {
		promptOpts = append(promptOpts, gollm.WithMaxLength(cfg.MaxTokens))
	}
	prompt := gollm.NewPrompt(text, promptOpts...)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.llm.SetOption("temperature", cfg.Temperature)
	p.llm.SetOption("top_p", cfg.TopP)
	if cfg.MaxTokens > 0 {
		p.llm.SetOption("max_tokens", cfg.MaxTokens)
	}
	if len(cfg.Stop) > 0 {
		p.llm.SetOption("stop", cfg.Stop)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] gollm complete: vendor=%s model=%s messages=%d", p.vendor, p.model, len(messages))
	}

	out, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", classifyError("gollm/"+p.vendor, err)
	}
	return out, nil
}

// ListModels implements Provider.ListModels. gollm has no listing API, so
// only the configured model is reported.
func (p *GollmProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{{
		Name:         p.model,
		InternalName: p.vendor + "/" + p.model,
		Provider:     "gollm",
	}}, nil
}

// GetModel implements Provider.GetModel.
func (p *GollmProvider) GetModel() string {
	return p.vendor + "/" + p.model
}

// Ping implements Provider.Ping. gollm has no health endpoint; a configured
// client is treated as reachable.
func (p *GollmProvider) Ping(ctx context.Context) error {
	if p.llm == nil {
		return fmt.Errorf("gollm %s client not initialized", p.vendor)
	}
	return ctx.Err()
}
