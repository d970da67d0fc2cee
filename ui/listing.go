package ui

import (
	"fmt"
	"strings"
	"time"

	"drakyn/model"
	"drakyn/server"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

type toolSource []model.ToolDefinition

func (s toolSource) String(i int) string { return s[i].Name + " " + s[i].Description }
func (s toolSource) Len() int            { return len(s) }

// FilterTools returns the tools fuzzily matching query, best match first.
// An empty query returns tools unchanged.
func FilterTools(tools []model.ToolDefinition, query string) []model.ToolDefinition {
	query = strings.TrimSpace(query)
	if query == "" {
		return tools
	}

	matches := fuzzy.FindFrom(query, toolSource(tools))
	out := make([]model.ToolDefinition, len(matches))
	for i, m := range matches {
		out[i] = tools[m.Index]
	}
	return out
}

// FormatToolList renders one tool per line: padded name, then the
// description truncated to the remaining width.
func FormatToolList(tools []model.ToolDefinition, width int) string {
	if len(tools) == 0 {
		return DimStyle.Render("No tools available.")
	}
	if width <= 0 {
		width = DefaultWidth
	}

	nameWidth := 0
	for _, t := range tools {
		if w := runewidth.StringWidth(t.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > width/2 {
		nameWidth = width / 2
	}
	descWidth := width - nameWidth - 2

	var b strings.Builder
	for i, t := range tools {
		name := runewidth.Truncate(t.Name, nameWidth, "...")
		name = runewidth.FillRight(name, nameWidth)
		desc := strings.Join(strings.Fields(t.Description), " ")
		if descWidth > 3 && runewidth.StringWidth(desc) > descWidth {
			desc = runewidth.Truncate(desc, descWidth, "...")
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ToolCallStyle.Render(name) + "  " + desc)
	}
	return b.String()
}

// FormatModels renders the model listing, marking the active model.
func FormatModels(resp *server.ModelsResponse) string {
	if len(resp.Models) == 0 {
		return DimStyle.Render("No models available.")
	}

	idWidth := 0
	for _, m := range resp.Models {
		if w := runewidth.StringWidth(m.ID); w > idWidth {
			idWidth = w
		}
	}

	var b strings.Builder
	for i, m := range resp.Models {
		marker := "  "
		id := runewidth.FillRight(m.ID, idWidth)
		if m.ID == resp.CurrentModel {
			marker = "* "
			id = HighlightStyle.Render(id)
		}
		size := ""
		if m.Size > 0 {
			size = DimStyle.Render(humanize.Bytes(uint64(m.Size)))
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimRight(marker+id+"  "+size, " "))
	}
	return b.String()
}

// FormatRuns renders recent journal entries, newest first.
func FormatRuns(runs []server.RunEntry, now time.Time) string {
	if len(runs) == 0 {
		return DimStyle.Render("No runs recorded.")
	}

	var b strings.Builder
	for i, r := range runs {
		outcome := r.Outcome
		switch r.Outcome {
		case "answer":
			outcome = ToolResultStyle.Render(runewidth.FillRight(outcome, 9))
		case "error":
			outcome = ErrorStyle.Render(runewidth.FillRight(outcome, 9))
		default:
			outcome = DimStyle.Render(runewidth.FillRight(outcome, 9))
		}

		line := fmt.Sprintf("%s  %s  %s  iter=%d tools=%d",
			DimStyle.Render(runewidth.FillRight(humanize.RelTime(r.StartedAt, now, "ago", "from now"), 16)),
			outcome,
			runewidth.FillRight(r.Model, 32),
			r.Iterations,
			r.ToolCalls,
		)
		if r.ToolErrors > 0 {
			line += fmt.Sprintf(" failed=%d", r.ToolErrors)
		}
		line += " " + DimStyle.Render((time.Duration(r.DurationMS) * time.Millisecond).String())
		if r.Error != "" {
			line += "\n    " + DimStyle.Render(runewidth.Truncate(r.Error, DefaultWidth-4, "..."))
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

// FormatHealth renders the status command output.
func FormatHealth(baseURL string, h *server.HealthResponse) string {
	lines := []string{
		TitleStyle.Render("drakyn "+h.Version) + DimStyle.Render(" at "+baseURL),
		"service:  " + ToolResultStyle.Render(h.Status) + " (" + h.Service + ")",
		"model:    " + h.CurrentModel + " [" + statusStyle(h.Backend) + "]",
		fmt.Sprintf("registry: %s (%d tools)", statusStyle(h.Registry), h.Tools),
	}
	return strings.Join(lines, "\n")
}

func statusStyle(status string) string {
	switch status {
	case "ok", "connected":
		return ToolResultStyle.Render(status)
	}
	return ErrorStyle.Render(status)
}
