package testutil

import (
	"context"
	"fmt"
	"sync"

	"drakyn/model"
	"drakyn/ollama"
)

// CompleteCall records one invocation of MockProvider.Complete.
type CompleteCall struct {
	Messages []model.Message
	Tools    []model.ToolDefinition
	Config   model.CompletionConfig
}

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	CompleteFunc   func(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error)
	ListModelsFunc func(ctx context.Context) ([]ollama.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	// State
	currentModel string
	mu           sync.Mutex
	calls        []CompleteCall
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.CompleteFunc = mock.defaultComplete
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// NewScriptedProvider returns a mock that answers with responses in order.
// Once the script runs out the last response repeats.
func NewScriptedProvider(modelName string, responses ...string) *MockProvider {
	mock := NewMockProvider(modelName)
	next := 0
	mock.CompleteFunc = func(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
		if len(responses) == 0 {
			return "", fmt.Errorf("no scripted responses")
		}
		i := next
		if i >= len(responses) {
			i = len(responses) - 1
		}
		next++
		return responses[i], nil
	}
	return mock
}

func (m *MockProvider) defaultComplete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	return "Mock response", nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return []ollama.ModelInfo{
		{Name: "mock-model-1", Size: 1000},
		{Name: "mock-model-2", Size: 2000},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{
		Messages: append([]model.Message(nil), messages...),
		Tools:    tools,
		Config:   cfg,
	})
	m.mu.Unlock()
	return m.CompleteFunc(ctx, messages, tools, cfg)
}

// Calls returns every Complete invocation seen so far.
func (m *MockProvider) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompleteCall(nil), m.calls...)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
