// Package stream encodes agent steps for transport and decodes them on the
// client side.
package stream

import (
	"encoding/json"

	"drakyn/model"
)

// Event is the wire form of one step.
type Event struct {
	Type      string         `json:"type"`
	Iteration *int           `json:"iteration,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolArgs  map[string]any `json:"tool_args,omitempty"`
	Content   string         `json:"content,omitempty"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// MarshalJSON always writes "result" on a successful tool_result, so a tool
// that returned null is distinguishable from a missing payload.
func (ev Event) MarshalJSON() ([]byte, error) {
	type wire Event
	if ev.Type != string(model.StepToolResult) || ev.Error != "" {
		return json.Marshal(wire(ev))
	}
	return json.Marshal(struct {
		wire
		Result any `json:"result"`
	}{wire(ev), ev.Result})
}

// FromStep converts a step. tool_call reasoning travels in Content; done
// carries no iteration.
func FromStep(step model.AgentStep) Event {
	ev := Event{Type: string(step.Type)}
	if step.Type != model.StepDone {
		it := step.Iteration
		ev.Iteration = &it
	}

	switch step.Type {
	case model.StepToolCall:
		ev.ToolName = step.Tool
		ev.ToolArgs = step.Args
		ev.Content = step.Reasoning
	case model.StepToolResult:
		ev.ToolName = step.Tool
		ev.Result = step.Result
		ev.Error = step.Error
	case model.StepAnswer:
		ev.Content = step.Content
	case model.StepError:
		ev.ToolName = step.Tool
		ev.Error = step.Error
	}
	return ev
}

// Step converts an event back into a step.
func (ev Event) Step() model.AgentStep {
	step := model.AgentStep{Type: model.StepType(ev.Type)}
	if ev.Iteration != nil {
		step.Iteration = *ev.Iteration
	}

	switch step.Type {
	case model.StepToolCall:
		step.Tool = ev.ToolName
		step.Args = ev.ToolArgs
		step.Reasoning = ev.Content
	case model.StepToolResult:
		step.Tool = ev.ToolName
		step.Result = ev.Result
		step.Error = ev.Error
	case model.StepAnswer:
		step.Content = ev.Content
	case model.StepError:
		step.Tool = ev.ToolName
		step.Error = ev.Error
	}
	return step
}
