package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"drakyn/stream"

	"github.com/mattn/go-runewidth"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// StepPrinter writes streamed agent events to a terminal as they arrive.
type StepPrinter struct {
	out   io.Writer
	width int

	// Verbose prints tool arguments and results untruncated.
	Verbose bool

	answer string
	failed string
}

func NewStepPrinter(out io.Writer, width int) *StepPrinter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &StepPrinter{out: out, width: width}
}

// Event prints one event. It matches the signature expected by the chat
// client so it can be passed directly as the callback.
func (p *StepPrinter) Event(ev stream.Event) error {
	switch ev.Type {
	case "answer":
		p.answer = ev.Content
	case "error":
		p.failed = ev.Error
	}

	text := FormatEvent(ev, p.width, p.Verbose)
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(p.out, text)
	return err
}

// Answer returns the final answer of the last run, if it produced one.
func (p *StepPrinter) Answer() string {
	return p.answer
}

// Err returns the terminal error of the last run, if any.
func (p *StepPrinter) Err() string {
	return p.failed
}

// Reset clears the per-run state before the next run.
func (p *StepPrinter) Reset() {
	p.answer = ""
	p.failed = ""
}

// FormatEvent renders ev for the terminal. done events render as "".
func FormatEvent(ev stream.Event, width int, verbose bool) string {
	iter := 0
	if ev.Iteration != nil {
		iter = *ev.Iteration + 1
	}

	switch ev.Type {
	case "thinking":
		return DimStyle.Render(fmt.Sprintf("… thinking (iteration %d)", iter))

	case "tool_call":
		line := ToolCallStyle.Render("→ "+ev.ToolName) + " " + DimStyle.Render(preview(compactJSON(ev.ToolArgs), width-runewidth.StringWidth(ev.ToolName)-3, verbose))
		if ev.Content != "" {
			for _, l := range wrapText(ev.Content, width-4) {
				line += "\n" + DimStyle.Render("  "+l)
			}
		}
		return line

	case "tool_result":
		if ev.Error != "" {
			return ErrorStyle.Render("✗ "+ev.ToolName) + " " + ev.Error
		}
		return ToolResultStyle.Render("✓ "+ev.ToolName) + " " + DimStyle.Render(preview(compactJSON(ev.Result), width-runewidth.StringWidth(ev.ToolName)-3, verbose))

	case "answer":
		return "\n" + RenderMarkdown(ev.Content, width)

	case "error":
		return ErrorStyle.Render("Error: ") + ev.Error

	case "done":
		return ""
	}

	return DimStyle.Render(fmt.Sprintf("[%s]", ev.Type))
}

func compactJSON(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// preview collapses s to one line and truncates it to width columns.
func preview(s string, width int, verbose bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if verbose || width <= 3 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// wrapText wraps text to fit within a given width
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	var currentLine string

	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		currentWidth := runewidth.StringWidth(currentLine)

		if wordWidth > width {
			if currentLine != "" {
				lines = append(lines, currentLine)
				currentLine = ""
			}
			for wordWidth > width {
				chunk := runewidth.Truncate(word, width, "")
				if chunk == "" {
					break
				}
				lines = append(lines, chunk)
				word = word[len(chunk):]
				wordWidth = runewidth.StringWidth(word)
			}
			currentLine = word
		} else if currentWidth+wordWidth+1 <= width {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		} else {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}
