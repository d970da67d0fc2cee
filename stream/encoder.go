package stream

import (
	"context"
	"errors"
	"fmt"

	"drakyn/model"
)

// ErrIncomplete is returned when the step channel closes before a terminal
// step, which only happens when the run was cancelled.
var ErrIncomplete = errors.New("run ended without a terminal step")

// Sink receives encoded events in order.
type Sink interface {
	// Send blocks until the event is accepted or ctx is done.
	Send(ctx context.Context, ev Event) error
	Close() error
}

// Encoder drains a run's step channel onto a Sink.
type Encoder struct {
	// OnStep, when set, sees every step after it was written.
	OnStep func(model.AgentStep)
}

// Drain forwards steps in order, appends a done event after the terminal
// step and closes the sink. On cancellation it stops writing and closes the
// sink without a terminal event.
func (e *Encoder) Drain(ctx context.Context, steps <-chan model.AgentStep, sink Sink) (err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		var (
			step model.AgentStep
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case step, ok = <-steps:
		}
		if !ok {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrIncomplete
		}

		if err := sink.Send(ctx, FromStep(step)); err != nil {
			return fmt.Errorf("failed to write %s event: %w", step.Type, err)
		}
		if e.OnStep != nil {
			e.OnStep(step)
		}

		if step.IsTerminal() {
			if err := sink.Send(ctx, FromStep(model.DoneStep())); err != nil {
				return fmt.Errorf("failed to write done event: %w", err)
			}
			return nil
		}
	}
}

// ChannelSink delivers events on a Go channel. Close closes the channel.
type ChannelSink struct {
	C chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, buffer)}
}

func (s *ChannelSink) Send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.C <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChannelSink) Close() error {
	close(s.C)
	return nil
}
