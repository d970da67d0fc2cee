// Package agent implements the reasoning loop that alternates between a
// completion provider and a capability registry until the model produces a
// plain-text answer, the iteration budget runs out, or the caller cancels.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drakyn/config"
	"drakyn/model"
	"drakyn/prompt"
)

// Executor runs one tool call against a capability registry.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// ToolSource hands out the current read-only tool snapshot.
type ToolSource interface {
	Tools() []model.ToolDefinition
}

// Request is the per-run input. Nothing in it outlives the run.
type Request struct {
	Message string

	// History is prior conversation, oldest first. A system message is
	// inserted at the front when the history does not start with one.
	History []model.Message

	// SystemPrompt overrides the configured prompt for this run only.
	SystemPrompt string

	// Tools overrides the orchestrator's ToolSource when non-nil.
	Tools []model.ToolDefinition
}

// Orchestrator drives runs. It holds no per-run state and is safe for
// concurrent use; each Run owns its own context and step channel.
type Orchestrator struct {
	provider  model.Provider
	executor  Executor
	tools     ToolSource
	config    model.AgentConfig
	extractor Extractor
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithConfig replaces the default agent configuration.
func WithConfig(cfg model.AgentConfig) Option {
	return func(o *Orchestrator) { o.config = cfg }
}

// WithToolSource sets where run-time tool snapshots come from.
func WithToolSource(src ToolSource) Option {
	return func(o *Orchestrator) { o.tools = src }
}

// New builds an orchestrator around a provider and a tool executor.
func New(provider model.Provider, executor Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		executor: executor,
		config:   model.DefaultAgentConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.config.MaxIterations <= 0 {
		o.config.MaxIterations = model.DefaultMaxIterations
	}
	o.extractor = Extractor{Policy: o.config.ExtractPolicy}
	return o
}

// Config returns the configuration runs are started with.
func (o *Orchestrator) Config() model.AgentConfig {
	return o.config
}

// Run starts a run and returns its step channel. The channel is unbuffered:
// the loop waits for each step to be received before doing more work. It is
// closed after the terminal step, or without one when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, req Request) <-chan model.AgentStep {
	steps := make(chan model.AgentStep)
	go func() {
		defer close(steps)
		o.loop(ctx, req, steps)
	}()
	return steps
}

func (o *Orchestrator) loop(ctx context.Context, req Request, steps chan<- model.AgentStep) {
	emit := func(step model.AgentStep) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case steps <- step:
			return true
		case <-ctx.Done():
			return false
		}
	}

	tools := req.Tools
	if tools == nil && o.tools != nil {
		tools = o.tools.Tools()
	}
	msgs := o.initialContext(req, tools)
	maxIter := o.config.MaxIterations

	for i := 0; i < maxIter; i++ {
		if o.config.Verbose && config.DebugLog != nil {
			config.DebugLog.Printf("[Agent] iteration %d/%d", i+1, maxIter)
		}

		if !emit(model.ThinkingStep(i)) {
			return
		}

		completion, err := o.complete(ctx, msgs, tools)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Agent] model call failed: %v", err)
			}
			emit(model.ErrorStep(i, "Model call failed: "+err.Error()))
			return
		}

		if o.config.Verbose && config.DebugLog != nil {
			config.DebugLog.Printf("[Agent] model response: %s", preview(completion, 200))
		}

		call, ok := o.extractor.Extract(completion)
		if !ok {
			emit(model.AnswerStep(i, completion))
			return
		}

		if _, known := model.FindTool(tools, call.Tool); !known {
			unknown := &model.UnknownToolError{Name: call.Tool}
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Agent] %v (available: %v)", unknown, model.ToolNames(tools))
			}
			emit(model.ErrorStep(i, unknown.Error()))
			return
		}

		msgs = msgs.Append(model.Message{Role: model.RoleAssistant, Content: completion})
		if !emit(model.ToolCallStep(i, call)) {
			return
		}

		result, err := o.execute(ctx, call)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			errMsg, class := describeToolError(err)
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Agent] tool %s failed: %s", call.Tool, errMsg)
			}
			msgs = msgs.Append(model.Message{
				Role:    model.RoleTool,
				Name:    call.Tool,
				Content: toolErrorContent(errMsg, class),
			})
			if !emit(model.ToolErrorStep(i, call.Tool, errMsg)) {
				return
			}
			if o.config.IsFatalToolClass(class) {
				step := model.ErrorStep(i, fmt.Sprintf("Tool %s failed: %s", call.Tool, errMsg))
				step.Tool = call.Tool
				emit(step)
				return
			}
			continue
		}

		msgs = msgs.Append(model.Message{
			Role:    model.RoleTool,
			Name:    call.Tool,
			Content: toolResultContent(result),
		})
		if !emit(model.ToolResultStep(i, call.Tool, result)) {
			return
		}
	}

	budget := &model.IterationBudgetError{Max: maxIter}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Agent] %v", budget)
	}
	emit(model.ErrorStep(maxIter-1, budget.Error()))
}

func (o *Orchestrator) initialContext(req Request, tools []model.ToolDefinition) model.Context {
	base := req.SystemPrompt
	if base == "" {
		base = o.config.SystemPrompt
	}

	msgs := make(model.Context, 0, len(req.History)+2)
	if len(req.History) == 0 || req.History[0].Role != model.RoleSystem {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: prompt.System(base, tools)})
	}
	msgs = append(msgs, req.History...)
	return append(msgs, model.Message{Role: model.RoleUser, Content: req.Message})
}

func (o *Orchestrator) complete(ctx context.Context, msgs model.Context, tools []model.ToolDefinition) (string, error) {
	callCtx := ctx
	if o.config.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.ProviderTimeout)
		defer cancel()
	}

	text, err := o.provider.Complete(callCtx, msgs, tools, o.config.Completion())
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		if _, ok := model.AsProviderError(err); !ok {
			err = &model.ProviderError{Provider: o.provider.GetModel(), Kind: model.KindTimeout, Err: err}
		}
	}
	return text, err
}

func (o *Orchestrator) execute(ctx context.Context, call model.ToolCall) (any, error) {
	callCtx := ctx
	if o.config.ToolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.ToolTimeout)
		defer cancel()
	}

	result, err := o.executor.Execute(callCtx, call.Tool, call.Args)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, model.ErrToolTimeout
	}
	return result, err
}

// describeToolError returns the message surfaced in tool_result steps and the
// tool-reported class, if any.
func describeToolError(err error) (string, string) {
	if errors.Is(err, model.ErrToolTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return model.ErrToolTimeout.Error(), ""
	}
	if te, ok := model.AsToolError(err); ok {
		return te.Message, te.Class
	}
	return err.Error(), ""
}

func toolResultContent(result any) string {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}

func toolErrorContent(msg, class string) string {
	payload := map[string]string{"error": msg}
	if class != "" {
		payload["error_class"] = class
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
