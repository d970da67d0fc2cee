package server

import (
	"fmt"
	"time"

	"drakyn/model"
	"drakyn/storage"
)

// ChatRequest is the body of POST /v1/agent/chat.
type ChatRequest struct {
	Message string           `json:"message" binding:"required"`
	Stream  bool             `json:"stream"`
	History []HistoryMessage `json:"history,omitempty"`
}

// HistoryMessage is one prior conversation turn supplied by the client.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatResponse is the aggregated (non-streaming) chat result. Exactly one of
// Answer and Error is set.
type ChatResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Version      string `json:"version"`
	CurrentModel string `json:"current_model"`
	Backend      string `json:"backend"`
	Registry     string `json:"registry"`
	Tools        int    `json:"tools"`
}

// ModelEntry describes one model. ID can be used as agent.model.
type ModelEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Size     int64  `json:"size,omitempty"`
}

type ModelsResponse struct {
	CurrentModel string       `json:"current_model"`
	Models       []ModelEntry `json:"models"`
}

type ToolsResponse struct {
	Tools     []model.ToolDefinition `json:"tools"`
	FetchedAt *time.Time             `json:"fetched_at,omitempty"`
}

type RunEntry struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"`
	Iterations int       `json:"iterations"`
	ToolCalls  int       `json:"tool_calls"`
	ToolErrors int       `json:"tool_errors"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

type RunsResponse struct {
	Runs []RunEntry `json:"runs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toRunEntry(r storage.RunRecord) RunEntry {
	return RunEntry{
		ID:         r.ID,
		Model:      r.Model,
		Outcome:    r.Outcome,
		Iterations: r.Iterations,
		ToolCalls:  r.ToolCalls,
		ToolErrors: r.ToolErrors,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// toHistory validates and converts client-supplied turns.
func toHistory(in []HistoryMessage) ([]model.Message, error) {
	out := make([]model.Message, 0, len(in))
	for i, m := range in {
		switch m.Role {
		case model.RoleSystem, model.RoleUser, model.RoleAssistant, model.RoleTool:
		default:
			return nil, fmt.Errorf("history[%d]: unknown role %q", i, m.Role)
		}
		out = append(out, model.Message{Role: m.Role, Content: m.Content, Name: m.Name})
	}
	return out, nil
}
