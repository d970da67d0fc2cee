package ui

import (
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

const (
	minRenderWidth = 20
	codeBlockBar   = "┃"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s\x1b]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// RenderMarkdown renders an answer for the terminal at the given width.
// Autolinking is disabled so URLs stay plain text the terminal can detect.
func RenderMarkdown(content string, width int) string {
	if width < minRenderWidth {
		width = minRenderWidth
	}

	content = mdLinkRegex.ReplaceAllString(content, "$2")

	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	rendered = colorURLs(rendered)
	rendered = frameCodeBlocks(rendered, width)
	return strings.TrimRight(rendered, "\n")
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, codeBlockBar) {
			lines[i] = urlRegex.ReplaceAllString(line, "\x1b[31m$1\x1b[0m")
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's bar prefix on code lines with a
// top and bottom rule.
func frameCodeBlocks(s string, width int) string {
	const darkGray, reset = "\x1b[90m", "\x1b[0m"

	rule := func(label string) string {
		n := width - 4
		if label == "" {
			return darkGray + strings.Repeat("━", n) + reset
		}
		left := (n - len(label)) / 2
		right := n - len(label) - left
		return darkGray + strings.Repeat("━", left) + reset + label + darkGray + strings.Repeat("━", right) + reset
	}

	var result []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, codeBlockBar) {
			if !inBlock {
				inBlock = true
				result = append(result, rule("[code]"))
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inBlock {
			result = append(result, rule(""))
			inBlock = false
		}
		result = append(result, line)
	}
	if inBlock {
		result = append(result, rule(""))
	}
	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBlockBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBlockBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
