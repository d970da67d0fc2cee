package agent

import "drakyn/model"

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeAnswer    Outcome = "answer"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// Summary folds a step sequence into the aggregate a non-streaming caller
// needs. The zero value is ready to Observe.
type Summary struct {
	Outcome    Outcome
	Answer     string
	Error      string
	Iterations int
	ToolCalls  int
	ToolErrors int
}

// Observe records one step.
func (s *Summary) Observe(step model.AgentStep) {
	switch step.Type {
	case model.StepThinking:
		s.Iterations = step.Iteration + 1
	case model.StepToolCall:
		s.ToolCalls++
	case model.StepToolResult:
		if step.Failed() {
			s.ToolErrors++
		}
	case model.StepAnswer:
		s.Outcome = OutcomeAnswer
		s.Answer = step.Content
	case model.StepError:
		s.Outcome = OutcomeError
		s.Error = step.Error
	}
}

// Finished reports whether a terminal step was observed.
func (s *Summary) Finished() bool {
	return s.Outcome == OutcomeAnswer || s.Outcome == OutcomeError
}

// Collect drains steps and returns them with their summary. A run that closes
// without a terminal step is marked cancelled.
func Collect(steps <-chan model.AgentStep) ([]model.AgentStep, Summary) {
	var (
		all     []model.AgentStep
		summary Summary
	)
	for step := range steps {
		all = append(all, step)
		summary.Observe(step)
	}
	if !summary.Finished() {
		summary.Outcome = OutcomeCancelled
	}
	return all, summary
}
