package provider

import (
	"testing"

	"drakyn/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantModel   string
	}{
		{
			name:      "ollama provider with defaults",
			config:    Config{Type: ProviderTypeOllama},
			wantModel: "llama3.1:latest",
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			wantModel: "llama3.1",
		},
		{
			name: "vllm provider without key",
			config: Config{
				Type:  ProviderTypeVLLM,
				Model: "Qwen/Qwen2.5-7B-Instruct",
			},
			wantModel: "Qwen/Qwen2.5-7B-Instruct",
		},
		{
			name:        "vllm provider without model",
			config:      Config{Type: ProviderTypeVLLM},
			expectError: true,
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				Model:  "gpt-4o-mini",
				APIKey: "test-key",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name:        "openai provider without key",
			config:      Config{Type: ProviderTypeOpenAI, Model: "gpt-4o-mini"},
			expectError: true,
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:   ProviderTypeOpenRouter,
				Model:  "qwen/qwen3-coder:free",
				APIKey: "test-key",
			},
			wantModel: "qwen/qwen3-coder:free",
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:    ProviderTypeAnthropic,
				BaseURL: "https://api.anthropic.com",
				Model:   "claude-sonnet-4-5-20250929",
				APIKey:  "test-key",
			},
			wantModel: "claude-sonnet-4-5-20250929",
		},
		{
			name:        "anthropic provider without key",
			config:      Config{Type: ProviderTypeAnthropic},
			expectError: true,
		},
		{
			name:        "gollm provider without vendor",
			config:      Config{Type: ProviderTypeGollm, Model: "llama3"},
			expectError: true,
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var _ model.Provider = p
			if got := p.GetModel(); got != tt.wantModel {
				t.Errorf("GetModel() = %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestParseModelID(t *testing.T) {
	tests := []struct {
		id        string
		wantType  ProviderType
		wantModel string
		wantErr   bool
	}{
		{"ollama/llama3.1:8b", ProviderTypeOllama, "llama3.1:8b", false},
		{"vllm/Qwen/Qwen2.5-7B-Instruct", ProviderTypeVLLM, "Qwen/Qwen2.5-7B-Instruct", false},
		{"openai/gpt-4o", ProviderTypeOpenAI, "gpt-4o", false},
		{"openrouter/meta-llama/llama-3.2-90b-instruct", ProviderTypeOpenRouter, "meta-llama/llama-3.2-90b-instruct", false},
		{"anthropic/claude-3-5-haiku-20241022", ProviderTypeAnthropic, "claude-3-5-haiku-20241022", false},
		{"gollm/groq/llama-3.1-8b-instant", ProviderTypeGollm, "groq/llama-3.1-8b-instant", false},
		{"claude-sonnet-4-5-20250929", ProviderTypeAnthropic, "claude-sonnet-4-5-20250929", false},
		{"gpt-4o-mini", ProviderTypeOpenAI, "gpt-4o-mini", false},
		{"o3-mini", ProviderTypeOpenAI, "o3-mini", false},
		{"  ollama/mistral  ", ProviderTypeOllama, "mistral", false},
		{"gollm/groq", "", "", true},
		{"ollama/", "", "", true},
		{"llama3", "", "", true},
		{"mistralai/Mistral-7B", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			kind, name, err := ParseModelID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseModelID(%q) expected error, got %s/%s", tt.id, kind, name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModelID(%q) error = %v", tt.id, err)
			}
			if kind != tt.wantType || name != tt.wantModel {
				t.Errorf("ParseModelID(%q) = (%s, %s), want (%s, %s)", tt.id, kind, name, tt.wantType, tt.wantModel)
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"vllm", ProviderTypeVLLM},
		{"local", ProviderTypeVLLM},
		{"openrouter", ProviderTypeOpenRouter},
		{"OpenAI", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"gollm", ProviderTypeGollm},
		{"custom", ProviderType("custom")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %s, want %s", tt.id, got, tt.want)
		}
	}
}
