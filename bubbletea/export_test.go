package bubbletea

import "github.com/fwojciec/chatlib"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// RenderSidebar exports renderSidebar for testing.
func RenderSidebar(st chatlib.State, width, height int, styles Styles) string {
	return renderSidebar(st, width, height, styles)
}

// SidebarWidth exports sidebarWidth for testing.
func SidebarWidth(total int) int {
	return sidebarWidth(total)
}

// ParseTitleCommand exports parseTitleCommand for testing.
func ParseTitleCommand(text string) (string, bool) {
	return parseTitleCommand(text)
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}

// SanitizeLine exports sanitizeLine for testing.
func SanitizeLine(s string) string {
	return sanitizeLine(s)
}
