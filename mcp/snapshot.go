package mcp

import (
	"context"
	"sync/atomic"
	"time"

	"drakyn/config"
	"drakyn/model"
)

// SnapshotStore persists the last good tool catalogue so a fresh process can
// serve requests before its registry answers.
type SnapshotStore interface {
	Load(ctx context.Context) ([]model.ToolDefinition, error)
	Save(ctx context.Context, tools []model.ToolDefinition) error
}

type snapshotState struct {
	tools     []model.ToolDefinition
	fetchedAt time.Time
}

// Snapshot is the read-mostly tool catalogue shared by concurrent runs. A
// refresh swaps in a new slice atomically; slices already handed out are
// never modified, so a run keeps a stable view for its whole lifetime.
type Snapshot struct {
	registry Registry
	store    SnapshotStore
	current  atomic.Pointer[snapshotState]
}

// NewSnapshot wraps registry. store may be nil.
func NewSnapshot(registry Registry, store SnapshotStore) *Snapshot {
	s := &Snapshot{registry: registry, store: store}
	s.current.Store(&snapshotState{})
	return s
}

// Tools returns the current catalogue. Callers must treat it as read-only.
func (s *Snapshot) Tools() []model.ToolDefinition {
	return s.current.Load().tools
}

// FetchedAt reports when the catalogue was last replaced.
func (s *Snapshot) FetchedAt() time.Time {
	return s.current.Load().fetchedAt
}

// Refresh reloads the catalogue from the registry. When the registry is
// unreachable and nothing has been loaded yet, the store is consulted.
func (s *Snapshot) Refresh(ctx context.Context) error {
	tools, err := s.registry.ListTools(ctx)
	if err != nil {
		if len(s.Tools()) == 0 && s.store != nil {
			if cached, loadErr := s.store.Load(ctx); loadErr == nil && len(cached) > 0 {
				s.swap(cached)
				if config.DebugLog != nil {
					config.DebugLog.Printf("[MCP] Registry unavailable, using %d cached tools: %v", len(cached), err)
				}
			}
		}
		return err
	}

	s.swap(tools)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[MCP] Loaded %d tools", len(tools))
	}

	if s.store != nil {
		if err := s.store.Save(ctx, tools); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[MCP] Failed to cache tool snapshot: %v", err)
		}
	}
	return nil
}

// Run refreshes every interval until ctx is done.
func (s *Snapshot) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Tool refresh failed: %v", err)
			}
		}
	}
}

// Execute forwards to the underlying registry.
func (s *Snapshot) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	return s.registry.Execute(ctx, name, args)
}

// Registry returns the wrapped registry.
func (s *Snapshot) Registry() Registry {
	return s.registry
}

func (s *Snapshot) swap(tools []model.ToolDefinition) {
	frozen := append([]model.ToolDefinition(nil), tools...)
	s.current.Store(&snapshotState{tools: frozen, fetchedAt: time.Now()})
}
