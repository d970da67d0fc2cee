package mcp

import (
	"context"
	"sync"
	"time"

	"drakyn/model"
)

// ToolFunc implements one tool of a StaticRegistry.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// StaticRegistry is an in-process registry. Tools are plain Go functions.
type StaticRegistry struct {
	mu    sync.RWMutex
	defs  []model.ToolDefinition
	funcs map[string]ToolFunc
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{funcs: make(map[string]ToolFunc)}
}

// Register adds or replaces a tool.
func (r *StaticRegistry) Register(def model.ToolDefinition, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[def.Name]; exists {
		for i := range r.defs {
			if r.defs[i].Name == def.Name {
				r.defs[i] = def
			}
		}
	} else {
		r.defs = append(r.defs, def)
	}
	r.funcs[def.Name] = fn
}

// RegisterResult registers a tool that always returns result.
func (r *StaticRegistry) RegisterResult(def model.ToolDefinition, result any) {
	r.Register(def, func(ctx context.Context, args map[string]any) (any, error) {
		return result, nil
	})
}

// RegisterDelay registers a tool that takes d to return result, or gives up
// with the context error.
func (r *StaticRegistry) RegisterDelay(def model.ToolDefinition, d time.Duration, result any) {
	r.Register(def, func(ctx context.Context, args map[string]any) (any, error) {
		select {
		case <-time.After(d):
			return result, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func (r *StaticRegistry) ListTools(ctx context.Context) ([]model.ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ToolDefinition(nil), r.defs...), nil
}

func (r *StaticRegistry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &model.ToolError{Tool: name, Class: "not_found", Message: "tool not registered: " + name}
	}
	return fn(ctx, args)
}

func (r *StaticRegistry) Close() error {
	return nil
}
