package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatlib"
	rw "github.com/mattn/go-runewidth"
)

const (
	maxSidebarWidth = 32
	minSidebarWidth = 12
	currentMarker   = "▸ "
	otherMarker     = "  "
)

// sidebarWidth returns the sidebar width for a terminal of the given width,
// or 0 when the terminal is too narrow to show one.
func sidebarWidth(total int) int {
	w := min(total/3, maxSidebarWidth)
	if w < minSidebarWidth {
		return 0
	}
	return w
}

// renderSidebar lists session titles, newest first, each followed by its
// message count. The current session is highlighted. Titles are truncated
// by display width so wide runes never overflow the column.
func renderSidebar(st chatlib.State, width, height int, styles Styles) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := []string{styles.Accent.Render(rw.Truncate("Sessions", width, "…")), ""}
	if len(st.Sessions) == 0 {
		lines = append(lines, styles.Muted.Render(rw.Truncate("Ctrl+N to start", width, "…")))
	}
	for _, sess := range st.Sessions {
		lines = append(lines, sidebarLine(sess, sess.ID == st.CurrentSessionID, width, styles))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func sidebarLine(sess chatlib.Session, current bool, width int, styles Styles) string {
	marker := otherMarker
	if current {
		marker = currentMarker
	}
	count := fmt.Sprintf(" %d", len(sess.Messages))
	name := sanitizeLine(sess.Title)
	titleWidth := width - rw.StringWidth(marker) - rw.StringWidth(count)
	if titleWidth < 1 {
		return rw.Truncate(marker+name, width, "…")
	}
	title := rw.FillRight(rw.Truncate(name, titleWidth, "…"), titleWidth)
	if current {
		return styles.Selected.Render(marker+title) + styles.Muted.Render(count)
	}
	return marker + title + styles.Muted.Render(count)
}
