// Package bubbletea provides a Bubble Tea TUI over a chatlib.Store: a
// session sidebar next to the current conversation.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatlib"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// AnswerMsg delivers the result of an answer request for SessionID.
type AnswerMsg struct {
	SessionID string
	Reply     chatlib.Reply
	Err       error
}
