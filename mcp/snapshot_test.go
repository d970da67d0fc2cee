package mcp

import (
	"context"
	"errors"
	"testing"

	"drakyn/model"
)

type memoryStore struct {
	tools []model.ToolDefinition
	saves int
}

func (m *memoryStore) Load(ctx context.Context) ([]model.ToolDefinition, error) {
	return m.tools, nil
}

func (m *memoryStore) Save(ctx context.Context, tools []model.ToolDefinition) error {
	m.tools = tools
	m.saves++
	return nil
}

func TestSnapshotRefreshSwapsAtomically(t *testing.T) {
	reg := NewStaticRegistry()
	reg.RegisterResult(model.ToolDefinition{Name: "one"}, 1)

	store := &memoryStore{}
	snap := NewSnapshot(reg, store)
	if len(snap.Tools()) != 0 {
		t.Fatal("expected empty snapshot before refresh")
	}

	if err := snap.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	held := snap.Tools()
	if len(held) != 1 {
		t.Fatalf("tools = %v", held)
	}

	reg.RegisterResult(model.ToolDefinition{Name: "two"}, 2)
	if err := snap.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if len(held) != 1 || held[0].Name != "one" {
		t.Errorf("previously returned snapshot changed: %v", held)
	}
	if len(snap.Tools()) != 2 {
		t.Errorf("new snapshot = %v", snap.Tools())
	}
	if store.saves != 2 {
		t.Errorf("store saves = %d, want 2", store.saves)
	}
	if snap.FetchedAt().IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestSnapshotFallsBackToStore(t *testing.T) {
	store := &memoryStore{tools: []model.ToolDefinition{{Name: "cached"}}}
	snap := NewSnapshot(failingRegistry{}, store)

	err := snap.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := model.ToolNames(snap.Tools()); len(names) != 1 || names[0] != "cached" {
		t.Errorf("tools = %v, want cached catalogue", names)
	}
}

func TestSnapshotExecuteDelegates(t *testing.T) {
	reg := NewStaticRegistry()
	reg.RegisterResult(model.ToolDefinition{Name: "echo"}, "hi")
	snap := NewSnapshot(reg, nil)

	got, err := snap.Execute(context.Background(), "echo", nil)
	if err != nil || got != "hi" {
		t.Errorf("Execute() = %v, %v", got, err)
	}

	_, err = snap.Execute(context.Background(), "missing", nil)
	if te, ok := model.AsToolError(err); !ok || te.Class != "not_found" {
		t.Errorf("expected not_found ToolError, got %v", err)
	}
}
