package mcp

import (
	"encoding/json"
	"testing"

	"drakyn/provider/testutil"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func TestConvertMCPTools(t *testing.T) {
	defs := ConvertMCPTools(testutil.TestMCPTools())
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}

	weather := defs[0]
	if weather.Name != "get_weather" || weather.Description == "" {
		t.Errorf("unexpected definition: %+v", weather)
	}
	if weather.Parameters["type"] != "object" {
		t.Errorf("type = %v", weather.Parameters["type"])
	}
	props, ok := weather.Parameters["properties"].(map[string]any)
	if !ok || props["location"] == nil {
		t.Errorf("properties = %#v", weather.Parameters["properties"])
	}
	required, ok := weather.Parameters["required"].([]any)
	if !ok || len(required) != 1 || required[0] != "location" {
		t.Errorf("required = %#v", weather.Parameters["required"])
	}
}

func TestConvertMCPToolRawSchema(t *testing.T) {
	tool := mcptypes.Tool{
		Name:           "raw",
		RawInputSchema: json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`),
	}
	def := ConvertMCPTool(tool)
	if _, ok := def.Parameters["properties"].(map[string]any)["q"]; !ok {
		t.Errorf("raw schema not used: %#v", def.Parameters)
	}
}

func TestConvertToolDefinitionRoundTrip(t *testing.T) {
	original := testutil.TestMCPTools()[1]
	back := ConvertToolDefinition(ConvertMCPTool(original))

	if back.Name != original.Name || back.InputSchema.Type != "object" {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if len(back.InputSchema.Required) != 1 || back.InputSchema.Required[0] != "expression" {
		t.Errorf("required = %v", back.InputSchema.Required)
	}
}

func TestConvertCallToolResult(t *testing.T) {
	tests := []struct {
		name   string
		result *mcptypes.CallToolResult
		check  func(t *testing.T, got any)
	}{
		{
			name:   "nil result",
			result: nil,
			check: func(t *testing.T, got any) {
				if got != nil {
					t.Errorf("got %v, want nil", got)
				}
			},
		},
		{
			name: "json text is decoded",
			result: &mcptypes.CallToolResult{
				Content: []mcptypes.Content{mcptypes.TextContent{Type: "text", Text: `["a","b","c"]`}},
			},
			check: func(t *testing.T, got any) {
				items, ok := got.([]any)
				if !ok || len(items) != 3 {
					t.Errorf("got %#v", got)
				}
			},
		},
		{
			name: "plain text parts are joined",
			result: &mcptypes.CallToolResult{
				Content: []mcptypes.Content{
					mcptypes.TextContent{Type: "text", Text: "line one"},
					mcptypes.TextContent{Type: "text", Text: "line two"},
				},
			},
			check: func(t *testing.T, got any) {
				if got != "line one\nline two" {
					t.Errorf("got %#v", got)
				}
			},
		},
		{
			name: "structured content wins",
			result: &mcptypes.CallToolResult{
				Content:           []mcptypes.Content{mcptypes.TextContent{Type: "text", Text: "ignored"}},
				StructuredContent: map[string]any{"count": 3},
			},
			check: func(t *testing.T, got any) {
				m, ok := got.(map[string]any)
				if !ok || m["count"] != 3 {
					t.Errorf("got %#v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ConvertCallToolResult(tt.result))
		})
	}
}
