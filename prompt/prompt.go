// Package prompt builds the agent's system prompt, including the textual tool
// catalogue that replaces native function calling.
package prompt

import (
	"encoding/json"
	"strings"

	"drakyn/model"
)

// AgentSystemPrompt is the stock instruction block for the agent loop.
const AgentSystemPrompt = `You are a helpful AI assistant with access to tools that allow you to interact with the user's system and data.

## How to Use Tools

When you need to accomplish a task that requires a tool, think step-by-step:

1. **Identify** what information or action you need
2. **Select** the appropriate tool
3. **Call** the tool with the right parameters
4. **Analyze** the results
5. **Respond** to the user with the information or next steps

To call a tool, respond with ONLY a JSON object in this exact format:

` + "```json" + `
{
  "tool": "tool_name",
  "args": {
    "parameter1": "value1"
  },
  "reasoning": "Brief explanation of why you're calling this tool"
}
` + "```" + `

## Important Guidelines

- Use tools when needed, but don't call them unnecessarily
- Be precise with tool parameters
- Check tool results before responding to the user
- Chain multiple tools if needed to accomplish complex tasks
- If a tool returns an error, adapt or explain the failure
- When you have the answer, reply in plain text without any JSON object

## Response Style

- Be concise but thorough
- Admit when you're uncertain
- Ask clarifying questions if the request is ambiguous
`

// FormatReminder is appended after tool results so the model keeps using the
// JSON convention on its next turn.
const FormatReminder = `Remember to format tool calls as JSON:
{
  "tool": "tool_name",
  "args": {...},
  "reasoning": "why you're calling this tool"
}
If you already have what you need, answer in plain text.`

// System returns the system prompt for a run. base replaces the stock prompt
// when non-empty; the tool catalogue is appended either way.
func System(base string, tools []model.ToolDefinition) string {
	if base == "" {
		base = AgentSystemPrompt
	}
	if len(tools) == 0 {
		return base
	}
	return strings.TrimRight(base, "\n") + "\n\n" + ToolSection(tools)
}

// ToolSection renders the "Available Tools" block.
func ToolSection(tools []model.ToolDefinition) string {
	var b strings.Builder
	b.WriteString("## Available Tools\n\n")
	for _, tool := range tools {
		b.WriteString("### " + tool.Name + "\n")
		if tool.Description != "" {
			b.WriteString(tool.Description + "\n")
		}
		b.WriteString("\n**Parameters:**\n```json\n")
		b.WriteString(parametersJSON(tool.Parameters))
		b.WriteString("\n```\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func parametersJSON(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
