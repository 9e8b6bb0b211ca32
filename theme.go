package chatlib

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the UI
// matches any color scheme. A negative index means "no color".
type Theme struct {
	UserMsg  int // User message prefix
	BotMsg   int // Bot message prefix
	Source   int // Citation list
	Error    int // Error messages
	Muted    int // Status bar, timestamps, placeholders
	Accent   int // Headings, links, current session marker
	Selected int // Current session background in the sidebar
	Border   int // Sidebar separator
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		BotMsg:   2,
		Source:   6,
		Error:    1,
		Muted:    8,
		Accent:   5,
		Selected: 0,
		Border:   8,
	}
}
