package testutil

import (
	"drakyn/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// TestMessages is one completed tool round trip: system, user, call, result.
func TestMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "You are a helpful assistant."},
		{Role: model.RoleUser, Content: "Find my python files"},
		{Role: model.RoleAssistant, Content: `{"tool": "search_files", "args": {"pattern": "*.py"}}`},
		{Role: model.RoleTool, Name: "search_files", Content: `["a.py","b.py","c.py"]`},
	}
}

// SingleUserMessage is the context of a run with no history.
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content},
	}
}

// TestTools is a small registry snapshot.
func TestTools() []model.ToolDefinition {
	return []model.ToolDefinition{
		{
			Name:        "search_files",
			Description: "Search for files matching a glob pattern",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string"},
				},
				"required": []any{"pattern"},
			},
		},
		{
			Name:        "get_weather",
			Description: "Get the current weather for a location",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{"type": "string"},
				},
			},
		},
	}
}

// TestMCPTools are the same kind of tools as an MCP server would list them.
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_weather",
			Description: "Get the current weather for a location",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state, e.g. San Francisco, CA",
					},
				},
				Required: []string{"location"},
			},
		},
		{
			Name:        "calculate",
			Description: "Perform a mathematical calculation",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "The mathematical expression to evaluate",
					},
				},
				Required: []string{"expression"},
			},
		},
	}
}
