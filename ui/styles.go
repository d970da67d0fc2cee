package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indexes, so output follows the user's terminal theme.
var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")
)

func fg(c lipgloss.Color, bold bool) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(bold)
}

var (
	UserStyle      = fg(successColor, true) // REPL prompt
	AssistantStyle = fg(accentColor, false)
	DimStyle       = fg(dimColor, false)
	TitleStyle     = lipgloss.NewStyle().Bold(true)
	HighlightStyle = fg(highlightColor, true)

	ToolCallStyle   = fg(warningColor, true)
	ToolResultStyle = fg(successColor, false)
	ErrorStyle      = fg(dangerColor, true)
)

// FormatHints formats alternating command/description pairs for the REPL
// help line, e.g. FormatHints("/copy", "Copy answer", "/exit", "Quit").
func FormatHints(parts ...string) string {
	descStyle := fg(accentColor, true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
