package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"drakyn/config"
	"drakyn/model"
	"drakyn/ollama"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicBaseURL = "https://api.anthropic.com"

// AnthropicProvider talks to the Messages API. System turns go out of band as
// system blocks; tool results are plain user text.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider requires an API key. An empty model selects Claude
// Sonnet 4.5.
func NewAnthropicProvider(baseURL, apiKey, modelName string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	selected := anthropic.ModelClaudeSonnet4_5_20250929
	if modelName != "" {
		selected = anthropic.Model(modelName)
	}

	c := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &c, model: selected, baseURL: baseURL}, nil
}

// Complete implements Provider.Complete with a single Messages API call.
//
// top_p is not forwarded: current Claude models reject requests that set both
// temperature and top_p.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	anthropicMessages, systemBlocks := convertToAnthropicMessages(messages, len(tools) > 0)

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = model.DefaultMaxTokens // Required by Anthropic API
	}

	params := anthropic.MessageNewParams{
		Model:       p.model,
		Messages:    anthropicMessages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(cfg.Temperature),
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(cfg.Stop) > 0 {
		params.StopSequences = cfg.Stop
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] anthropic complete: model=%s messages=%d tools=%d", p.model, len(anthropicMessages), len(tools))
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyError("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 && len(resp.Content) == 0 {
		return "", &model.ProviderError{
			Provider: "anthropic",
			Kind:     model.KindBackend,
			Err:      errors.New("message returned no content"),
		}
	}

	return sb.String(), nil
}

// fallbackAnthropicModels is reported when the models endpoint is unavailable.
var fallbackAnthropicModels = []anthropic.Model{
	anthropic.ModelClaudeSonnet4_5_20250929,
	anthropic.ModelClaude3_5Haiku20241022,
	anthropic.ModelClaude_3_Opus_20240229,
	anthropic.ModelClaude_3_Haiku_20240307,
}

// ListModels asks the models endpoint and falls back to a fixed list.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	var ids []string
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err == nil {
		for _, m := range page.Data {
			ids = append(ids, m.ID)
		}
	} else if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] anthropic model listing failed, using fallback list: %v", err)
	}
	if len(ids) == 0 {
		for _, m := range fallbackAnthropicModels {
			ids = append(ids, string(m))
		}
	}

	infos := make([]ollama.ModelInfo, len(ids))
	for i, id := range ids {
		infos[i] = ollama.ModelInfo{Name: id, InternalName: id, Provider: "anthropic"}
	}
	return infos, nil
}

func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// Ping lists a single model; it costs no tokens.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)}); err != nil {
		return classifyError("anthropic", err)
	}
	return nil
}

// convertToAnthropicMessages converts a run's context to Anthropic format.
// Returns the message array and the system blocks, which Anthropic takes as a
// separate parameter.
func convertToAnthropicMessages(messages []model.Message, withReminder bool) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	system, turns := splitSystem(toTurns(messages, withReminder))

	var systemBlocks []anthropic.TextBlockParam
	if system != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: system})
	}

	anthropicMsgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.Role == model.RoleAssistant {
			anthropicMsgs = append(anthropicMsgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
			continue
		}
		anthropicMsgs = append(anthropicMsgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
	}

	return anthropicMsgs, systemBlocks
}
