package provider_test

import (
	"context"
	"testing"
	"time"

	"drakyn/model"
	"drakyn/provider"
	"drakyn/provider/testutil"
)

// Compile-time checks that every backend satisfies model.Provider.
var (
	_ model.Provider = (*provider.OllamaProvider)(nil)
	_ model.Provider = (*provider.OpenAIProvider)(nil)
	_ model.Provider = (*provider.OpenRouterProvider)(nil)
	_ model.Provider = (*provider.AnthropicProvider)(nil)
	_ model.Provider = (*provider.GollmProvider)(nil)
)

// TestProviderContract defines the contract all providers must satisfy.
func TestProviderContract(t *testing.T) {
	tests := []struct {
		name     string
		provider model.Provider
	}{
		{"Mock", testutil.NewMockProvider("test-model")},
		{"MockWithRetry", provider.WithRetry(testutil.NewMockProvider("test-model"), provider.RetryPolicy{MaxRetries: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			out, err := tt.provider.Complete(ctx, testutil.SingleUserMessage("Hello"), testutil.TestTools(), model.DefaultAgentConfig().Completion())
			if err != nil {
				t.Errorf("Complete() error = %v", err)
			}
			if out == "" {
				t.Error("Complete() returned empty text")
			}

			if tt.provider.GetModel() != "test-model" {
				t.Errorf("GetModel() = %q", tt.provider.GetModel())
			}

			models, err := tt.provider.ListModels(ctx)
			if err != nil {
				t.Errorf("ListModels() error = %v", err)
			}
			if len(models) == 0 {
				t.Error("ListModels() returned no models")
			}

			if err := tt.provider.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}
