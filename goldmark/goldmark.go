// Package goldmark renders bot replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatlib"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code
// blocks are rendered without reflow.
func Render(source string, width int, theme chatlib.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme, width).render([]byte(source))
}

// RenderSources returns a numbered citation list, one source per line.
// Sources without a title fall back to their URL.
func RenderSources(sources []chatlib.Source, width int, theme chatlib.Theme) string {
	if len(sources) == 0 {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	header := lipgloss.NewStyle().Foreground(ansiColor(theme.Source)).Bold(true)
	muted := lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true)

	lines := []string{header.Render("Sources")}
	for i, src := range sources {
		label := src.Title
		if label == "" {
			label = src.URL
		}
		line := fmt.Sprintf("[%d] %s", i+1, label)
		if src.URL != "" && src.URL != label {
			line += " " + muted.Render("("+src.URL+")")
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

// RenderReply renders a bot message body followed by its citations.
func RenderReply(m chatlib.Message, width int, theme chatlib.Theme) string {
	body := Render(m.Text, width, theme)
	sources := RenderSources(m.Sources, width, theme)
	switch {
	case sources == "":
		return body
	case body == "":
		return sources
	default:
		return body + "\n\n" + sources
	}
}
