package model

// StepType tags an AgentStep.
type StepType string

const (
	StepThinking   StepType = "thinking"
	StepToolCall   StepType = "tool_call"
	StepToolResult StepType = "tool_result"
	StepAnswer     StepType = "answer"
	StepError      StepType = "error"
	StepDone       StepType = "done"
)

// AgentStep is one observable unit of orchestrator output. Which fields are
// populated depends on Type:
//
//	thinking     Iteration
//	tool_call    Iteration, Tool, Args, Reasoning
//	tool_result  Iteration, Tool, Result or Error
//	answer       Iteration, Content
//	error        Iteration, Error (Tool when a tool failure ended the run)
//	done         nothing
//
// Steps are values; once sent they are never revised.
type AgentStep struct {
	Type      StepType
	Iteration int
	Tool      string
	Args      map[string]any
	Reasoning string
	Content   string
	Result    any
	Error     string
}

// IsTerminal reports whether the step ends a run's content.
func (s AgentStep) IsTerminal() bool {
	return s.Type == StepAnswer || s.Type == StepError
}

// Failed reports whether a tool_result step carries an error payload.
func (s AgentStep) Failed() bool {
	return s.Type == StepToolResult && s.Error != ""
}

func ThinkingStep(iteration int) AgentStep {
	return AgentStep{Type: StepThinking, Iteration: iteration}
}

func ToolCallStep(iteration int, call ToolCall) AgentStep {
	return AgentStep{
		Type:      StepToolCall,
		Iteration: iteration,
		Tool:      call.Tool,
		Args:      call.Args,
		Reasoning: call.Reasoning,
	}
}

func ToolResultStep(iteration int, tool string, result any) AgentStep {
	return AgentStep{Type: StepToolResult, Iteration: iteration, Tool: tool, Result: result}
}

func ToolErrorStep(iteration int, tool string, errMsg string) AgentStep {
	return AgentStep{Type: StepToolResult, Iteration: iteration, Tool: tool, Error: errMsg}
}

func AnswerStep(iteration int, content string) AgentStep {
	return AgentStep{Type: StepAnswer, Iteration: iteration, Content: content}
}

func ErrorStep(iteration int, msg string) AgentStep {
	return AgentStep{Type: StepError, Iteration: iteration, Error: msg}
}

func DoneStep() AgentStep {
	return AgentStep{Type: StepDone}
}
