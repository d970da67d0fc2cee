package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindRateLimit  ErrorKind = "rate_limit"
	KindConnection ErrorKind = "connection"
	KindTimeout    ErrorKind = "timeout"
	KindBackend    ErrorKind = "backend"
)

// ProviderError is the single failure category a completion backend reports.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s error (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the call could plausibly succeed.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindConnection, KindTimeout:
		return true
	case KindBackend:
		return e.StatusCode == 0 || e.StatusCode >= 500
	}
	return false
}

// UnknownToolError means the model named a tool absent from the snapshot.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

// ToolError is a failure reported by the capability registry for one call.
// Class is an optional machine-readable category supplied by the tool.
type ToolError struct {
	Tool    string
	Class   string
	Message string
}

func (e *ToolError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Class)
	}
	return e.Message
}

// ErrToolTimeout is reported when a registry call exceeds its deadline.
var ErrToolTimeout = errors.New("timeout")

// IterationBudgetError is raised when the loop runs out of iterations.
type IterationBudgetError struct {
	Max int
}

func (e *IterationBudgetError) Error() string {
	return fmt.Sprintf("Maximum iterations (%d) exceeded", e.Max)
}

// AsProviderError unwraps err into a *ProviderError when possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsToolError unwraps err into a *ToolError when possible.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
