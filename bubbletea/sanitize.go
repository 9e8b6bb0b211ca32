package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes message text from an answer backend or an imported file
// safe to print. Escape sequences and C0, DEL and C1 control characters
// are removed; tabs and newlines survive. CRLF and lone CR both become LF.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case r <= 0x1F, r == 0x7F, r >= 0x80 && r <= 0x9F:
			return -1
		}
		return r
	}, s)
}

// sanitizeLine is sanitize for single-line fields such as titles. Line
// breaks and tabs collapse to one space.
func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(sanitize(s)), " ")
}
