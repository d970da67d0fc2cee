package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"drakyn/config"
	"drakyn/model"
)

// Aggregator merges several registries into one, exposing tools as
// "<server>.<tool>".
type Aggregator struct {
	registries map[string]Registry
}

func NewAggregator(registries map[string]Registry) *Aggregator {
	return &Aggregator{registries: registries}
}

// ListTools returns the namespaced union of every server's tools. A server
// that fails to list is skipped so one outage does not hide the rest.
func (a *Aggregator) ListTools(ctx context.Context) ([]model.ToolDefinition, error) {
	var (
		allTools []model.ToolDefinition
		errs     []error
	)

	for _, serverID := range a.serverIDs() {
		tools, err := a.registries[serverID].ListTools(ctx)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[MCP] Skipping '%s': %v", serverID, err)
			}
			errs = append(errs, err)
			continue
		}

		for _, tool := range tools {
			namespaced := tool
			namespaced.Name = serverID + "." + tool.Name
			allTools = append(allTools, namespaced)
		}
	}

	if len(allTools) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return allTools, nil
}

func (a *Aggregator) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	serverID, toolName := parseToolName(name)

	registry, ok := a.registries[serverID]
	if !ok {
		return nil, fmt.Errorf("no tool server named %q", serverID)
	}
	return registry.Execute(ctx, toolName, args)
}

func (a *Aggregator) Close() error {
	var errs []error
	for _, r := range a.registries {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Aggregator) serverIDs() []string {
	ids := make([]string, 0, len(a.registries))
	for id := range a.registries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func parseToolName(namespacedName string) (string, string) {
	idx := strings.Index(namespacedName, ".")
	if idx == -1 {
		return "", namespacedName
	}
	return namespacedName[:idx], namespacedName[idx+1:]
}
