package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAgentConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *AgentConfig) {}},
		{name: "zero iterations", mutate: func(c *AgentConfig) { c.MaxIterations = 0 }, wantErr: true},
		{name: "too many iterations", mutate: func(c *AgentConfig) { c.MaxIterations = 21 }, wantErr: true},
		{name: "upper iteration bound", mutate: func(c *AgentConfig) { c.MaxIterations = 20 }},
		{name: "negative temperature", mutate: func(c *AgentConfig) { c.Temperature = -0.1 }, wantErr: true},
		{name: "temperature too high", mutate: func(c *AgentConfig) { c.Temperature = 2.5 }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *AgentConfig) { c.MaxTokens = 0 }, wantErr: true},
		{name: "top_p above one", mutate: func(c *AgentConfig) { c.TopP = 1.1 }, wantErr: true},
		{name: "last policy", mutate: func(c *AgentConfig) { c.ExtractPolicy = ExtractLast }},
		{name: "bogus policy", mutate: func(c *AgentConfig) { c.ExtractPolicy = "middle" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAgentConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsFatalToolClass(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.FatalToolErrorClasses = []string{"permission_denied"}

	if !cfg.IsFatalToolClass("permission_denied") {
		t.Error("expected permission_denied to be fatal")
	}
	if cfg.IsFatalToolClass("not_found") {
		t.Error("expected not_found to be recoverable")
	}
	if cfg.IsFatalToolClass("") {
		t.Error("empty class must never be fatal")
	}
}

func TestContextAppendDoesNotAlias(t *testing.T) {
	base := Context{{Role: RoleSystem, Content: "sys"}}
	a := base.Append(Message{Role: RoleUser, Content: "a"})
	b := base.Append(Message{Role: RoleUser, Content: "b"})

	if len(base) != 1 {
		t.Fatalf("base modified: len = %d", len(base))
	}
	if a[1].Content != "a" || b[1].Content != "b" {
		t.Errorf("appends aliased: a=%q b=%q", a[1].Content, b[1].Content)
	}
}

func TestErrorTypes(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", &ProviderError{Provider: "openai", Kind: KindRateLimit, StatusCode: 429, Err: errors.New("slow down")})

	pe, ok := AsProviderError(wrapped)
	if !ok {
		t.Fatal("expected ProviderError in chain")
	}
	if !pe.Retryable() {
		t.Error("rate limit should be retryable")
	}

	auth := &ProviderError{Provider: "anthropic", Kind: KindAuth, StatusCode: 401, Err: errors.New("bad key")}
	if auth.Retryable() {
		t.Error("auth failures should not be retryable")
	}

	if got := (&UnknownToolError{Name: "foo_bar"}).Error(); got != "Unknown tool: foo_bar" {
		t.Errorf("UnknownToolError = %q", got)
	}
	if got := (&IterationBudgetError{Max: 2}).Error(); got != "Maximum iterations (2) exceeded" {
		t.Errorf("IterationBudgetError = %q", got)
	}
}
