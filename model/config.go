package model

import (
	"fmt"
	"time"
)

// ExtractPolicy selects which candidate wins when a completion contains more
// than one well-formed tool call object.
type ExtractPolicy string

const (
	ExtractFirst ExtractPolicy = "first"
	ExtractLast  ExtractPolicy = "last"
)

const (
	DefaultMaxIterations   = 5
	MaxAllowedIterations   = 20
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 512
	DefaultTopP            = 0.9
	DefaultProviderTimeout = 120 * time.Second
	DefaultToolTimeout     = 30 * time.Second
)

// AgentConfig is fixed for the lifetime of one run.
type AgentConfig struct {
	MaxIterations int
	Temperature   float64
	MaxTokens     int
	TopP          float64
	Verbose       bool

	// SystemPrompt replaces the built-in agent prompt when set. The tool
	// catalogue is still appended to it.
	SystemPrompt string

	ProviderTimeout time.Duration
	ToolTimeout     time.Duration
	ExtractPolicy   ExtractPolicy

	// FatalToolErrorClasses lists tool-reported error classes that end the
	// run instead of being fed back to the model.
	FatalToolErrorClasses []string
}

// DefaultAgentConfig returns the stock loop settings.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxIterations:   DefaultMaxIterations,
		Temperature:     DefaultTemperature,
		MaxTokens:       DefaultMaxTokens,
		TopP:            DefaultTopP,
		ProviderTimeout: DefaultProviderTimeout,
		ToolTimeout:     DefaultToolTimeout,
		ExtractPolicy:   ExtractFirst,
	}
}

// Validate checks the configured ranges.
func (c AgentConfig) Validate() error {
	if c.MaxIterations <= 0 || c.MaxIterations > MaxAllowedIterations {
		return fmt.Errorf("max_iterations must be between 1 and %d, got %d", MaxAllowedIterations, c.MaxIterations)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1, got %g", c.TopP)
	}
	switch c.ExtractPolicy {
	case "", ExtractFirst, ExtractLast:
	default:
		return fmt.Errorf("unknown extract policy %q", c.ExtractPolicy)
	}
	return nil
}

// IsFatalToolClass reports whether class is configured to end a run.
func (c AgentConfig) IsFatalToolClass(class string) bool {
	if class == "" {
		return false
	}
	for _, fc := range c.FatalToolErrorClasses {
		if fc == class {
			return true
		}
	}
	return false
}

// Completion derives the per-call sampling parameters.
func (c AgentConfig) Completion() CompletionConfig {
	return CompletionConfig{
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		TopP:        c.TopP,
	}
}

// CompletionConfig holds the sampling parameters passed to a provider.
type CompletionConfig struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	Stop        []string
}
