package provider

import (
	"fmt"
	"strings"

	"drakyn/model"
	"drakyn/prompt"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// turn is a provider-neutral chat turn. Only system, user and assistant roles
// survive rendering; tool messages have already been folded into user turns.
type turn struct {
	Role    string
	Content string
}

// toTurns renders a run's context into backend turns.
//
// Tool messages become user turns ("Tool '<name>' returned:\n<content>"),
// because none of the backends receive native tool definitions. When
// withReminder is set the JSON tool-call reminder is appended to the most
// recent tool turn so the model keeps the calling convention.
func toTurns(messages []model.Message, withReminder bool) []turn {
	turns := make([]turn, 0, len(messages))
	lastTool := -1

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			turns = append(turns, turn{Role: model.RoleSystem, Content: msg.Content})
		case model.RoleAssistant:
			turns = append(turns, turn{Role: model.RoleAssistant, Content: msg.Content})
		case model.RoleTool:
			lastTool = len(turns)
			turns = append(turns, turn{Role: model.RoleUser, Content: formatToolTurn(msg)})
		default:
			turns = append(turns, turn{Role: model.RoleUser, Content: msg.Content})
		}
	}

	if withReminder && lastTool >= 0 {
		turns[lastTool].Content += "\n\n" + prompt.FormatReminder
	}
	return turns
}

func formatToolTurn(msg model.Message) string {
	name := msg.Name
	if name == "" {
		name = "tool"
	}
	return fmt.Sprintf("Tool '%s' returned:\n%s", name, msg.Content)
}

// splitSystem separates system turns (joined by a blank line) from the rest.
// Used by backends that take the system prompt out of band.
func splitSystem(turns []turn) (string, []turn) {
	var system []string
	rest := make([]turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == model.RoleSystem {
			system = append(system, t.Content)
			continue
		}
		rest = append(rest, t)
	}
	return strings.Join(system, "\n\n"), rest
}

// ConvertToOllamaMessages converts rendered turns to Ollama api.Message.
func ConvertToOllamaMessages(messages []model.Message, withReminder bool) []api.Message {
	turns := toTurns(messages, withReminder)
	result := make([]api.Message, len(turns))
	for i, t := range turns {
		result[i] = api.Message{
			Role:    t.Role,
			Content: t.Content,
		}
	}
	return result
}

// ConvertToOpenAIMessages converts rendered turns to the OpenAI chat format.
// Used by the OpenAI, OpenRouter and vLLM providers.
func ConvertToOpenAIMessages(messages []model.Message, withReminder bool) []openai.ChatCompletionMessageParamUnion {
	turns := toTurns(messages, withReminder)
	result := make([]openai.ChatCompletionMessageParamUnion, len(turns))

	for i, t := range turns {
		switch t.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(t.Content)
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(t.Content)
		default:
			result[i] = openai.UserMessage(t.Content)
		}
	}

	return result
}

// renderTranscript flattens turns into a single prompt for single-shot
// backends (gollm). Earlier assistant turns are labelled so the model can
// tell them apart from user input.
func renderTranscript(messages []model.Message, withReminder bool) (system, text string) {
	system, rest := splitSystem(toTurns(messages, withReminder))

	parts := make([]string, 0, len(rest))
	for _, t := range rest {
		if t.Role == model.RoleAssistant {
			parts = append(parts, "[Assistant]: "+t.Content)
			continue
		}
		parts = append(parts, t.Content)
	}
	return system, strings.Join(parts, "\n\n")
}
