package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"drakyn/model"
	"drakyn/server"
	"drakyn/stream"

	"github.com/atotto/clipboard"
)

// ChatFunc sends one message with the conversation so far and reports every
// event of the run to onEvent.
type ChatFunc func(ctx context.Context, message string, history []server.HistoryMessage, onEvent func(stream.Event) error) error

// REPL is the interactive chat loop behind `drakyn chat`.
type REPL struct {
	in      io.Reader
	out     io.Writer
	chat    ChatFunc
	printer *StepPrinter

	history []server.HistoryMessage

	// copy writes to the system clipboard; swapped in tests.
	copy func(string) error
}

func NewREPL(in io.Reader, out io.Writer, width int, chat ChatFunc) *REPL {
	return &REPL{
		in:      in,
		out:     out,
		chat:    chat,
		printer: NewStepPrinter(out, width),
		copy:    clipboard.WriteAll,
	}
}

// SetVerbose toggles untruncated tool arguments and results.
func (r *REPL) SetVerbose(v bool) {
	r.printer.Verbose = v
}

// History returns the conversation accumulated so far.
func (r *REPL) History() []server.HistoryMessage {
	return r.history
}

// Run reads lines until EOF, /exit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, FormatHints("/copy", "Copy answer", "/clear", "New conversation", "/help", "Commands", "/exit", "Quit"))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, UserStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.command(line); quit {
				return nil
			}
			continue
		}

		if err := r.send(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintln(r.out, ErrorStyle.Render("Error: ")+err.Error())
		}
	}
}

func (r *REPL) send(ctx context.Context, message string) error {
	r.printer.Reset()
	if err := r.chat(ctx, message, r.history, r.printer.Event); err != nil {
		return err
	}

	// Only completed exchanges become history.
	if answer := r.printer.Answer(); answer != "" {
		r.history = append(r.history,
			server.HistoryMessage{Role: model.RoleUser, Content: message},
			server.HistoryMessage{Role: model.RoleAssistant, Content: answer},
		)
	}
	return nil
}

func (r *REPL) command(line string) bool {
	cmd := strings.Fields(line)[0]
	switch cmd {
	case "/exit", "/quit":
		return true
	case "/clear":
		r.history = nil
		fmt.Fprintln(r.out, DimStyle.Render("Conversation cleared."))
	case "/copy":
		answer := r.lastAnswer()
		if answer == "" {
			fmt.Fprintln(r.out, DimStyle.Render("Nothing to copy yet."))
			return false
		}
		if err := r.copy(answer); err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("Copy failed: ")+err.Error())
			return false
		}
		fmt.Fprintln(r.out, DimStyle.Render("Answer copied to clipboard."))
	case "/history":
		fmt.Fprintln(r.out, DimStyle.Render(fmt.Sprintf("%d messages in this conversation.", len(r.history))))
	case "/help":
		fmt.Fprintln(r.out, strings.Join([]string{
			"/copy     copy the last answer to the clipboard",
			"/clear    start a new conversation",
			"/history  show the conversation length",
			"/exit     quit",
		}, "\n"))
	default:
		fmt.Fprintln(r.out, ErrorStyle.Render("Unknown command: ")+cmd)
	}
	return false
}

func (r *REPL) lastAnswer() string {
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Role == model.RoleAssistant {
			return r.history[i].Content
		}
	}
	return ""
}
