package mcp

import (
	"encoding/json"
	"strings"

	"drakyn/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// ConvertMCPTools converts MCP tool listings to tool definitions.
func ConvertMCPTools(mcpTools []mcptypes.Tool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(mcpTools))
	for _, tool := range mcpTools {
		defs = append(defs, ConvertMCPTool(tool))
	}
	return defs
}

// ConvertMCPTool converts a single MCP tool. A raw input schema wins over the
// structured one when the server supplied it.
func ConvertMCPTool(tool mcptypes.Tool) model.ToolDefinition {
	return model.ToolDefinition{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  schemaToParameters(tool),
	}
}

func schemaToParameters(tool mcptypes.Tool) map[string]any {
	if len(tool.RawInputSchema) > 0 {
		var params map[string]any
		if err := json.Unmarshal(tool.RawInputSchema, &params); err == nil {
			return params
		}
	}

	schema := tool.InputSchema
	params := map[string]any{}
	if schema.Type != "" {
		params["type"] = schema.Type
	}
	if len(schema.Properties) > 0 {
		params["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		required := make([]any, len(schema.Required))
		for i, r := range schema.Required {
			required[i] = r
		}
		params["required"] = required
	}
	if len(schema.Defs) > 0 {
		params["$defs"] = schema.Defs
	}
	return params
}

// ConvertToolDefinition is the inverse of ConvertMCPTool, used when a tool
// catalogue loaded from a plain registry is republished over MCP.
func ConvertToolDefinition(def model.ToolDefinition) mcptypes.Tool {
	tool := mcptypes.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcptypes.ToolInputSchema{Type: "object"},
	}
	if t, ok := def.Parameters["type"].(string); ok {
		tool.InputSchema.Type = t
	}
	if props, ok := def.Parameters["properties"].(map[string]any); ok {
		tool.InputSchema.Properties = props
	}
	switch req := def.Parameters["required"].(type) {
	case []string:
		tool.InputSchema.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				tool.InputSchema.Required = append(tool.InputSchema.Required, s)
			}
		}
	}
	return tool
}

// ConvertCallToolResult turns an MCP tool result into a JSON-friendly value.
// Structured content wins; otherwise text parts are joined and decoded as
// JSON when possible. Non-text parts are passed through as-is.
func ConvertCallToolResult(result *mcptypes.CallToolResult) any {
	if result == nil {
		return nil
	}
	if result.StructuredContent != nil {
		return result.StructuredContent
	}

	var texts []string
	var other []any
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcptypes.TextContent:
			texts = append(texts, c.Text)
		case *mcptypes.TextContent:
			texts = append(texts, c.Text)
		default:
			other = append(other, c)
		}
	}

	if len(other) > 0 {
		if len(texts) == 0 {
			return other
		}
		for _, t := range texts {
			other = append(other, t)
		}
		return other
	}
	if len(texts) == 0 {
		return nil
	}

	joined := strings.Join(texts, "\n")
	var decoded any
	if err := json.Unmarshal([]byte(joined), &decoded); err == nil {
		return decoded
	}
	return joined
}

// resultErrorText returns the text of an IsError result.
func resultErrorText(result *mcptypes.CallToolResult) string {
	switch v := ConvertCallToolResult(result).(type) {
	case string:
		return v
	case nil:
		return "tool reported an error"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "tool reported an error"
		}
		return string(data)
	}
}
