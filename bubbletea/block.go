package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatlib"
	"github.com/fwojciec/chatlib/goldmark"
)

// MessageBlock is a renderable element in the conversation. View takes a
// width so the root model controls layout and blocks are testable in
// isolation.
type MessageBlock interface {
	View(width int) string
}

var (
	_ MessageBlock = (*UserMessageBlock)(nil)
	_ MessageBlock = (*BotMessageBlock)(nil)
	_ MessageBlock = (*ErrorBlock)(nil)
)

const timeLayout = "15:04"

// NewMessageBlock returns the block for m.
func NewMessageBlock(m chatlib.Message, theme chatlib.Theme, styles Styles) MessageBlock {
	if m.IsBot {
		return &BotMessageBlock{msg: m, theme: theme, styles: styles}
	}
	return &UserMessageBlock{msg: m, styles: styles}
}

// UserMessageBlock renders a user message under a "You" header.
type UserMessageBlock struct {
	msg    chatlib.Message
	styles Styles
}

func (b *UserMessageBlock) View(width int) string {
	header := b.styles.UserMsg.Render("You") + " " + b.styles.Muted.Render(b.msg.Timestamp.Format(timeLayout))
	body := lipgloss.NewStyle().Width(width).Render(sanitize(b.msg.Text))
	return header + "\n" + body
}

// BotMessageBlock renders a bot reply as markdown followed by its sources.
type BotMessageBlock struct {
	msg    chatlib.Message
	theme  chatlib.Theme
	styles Styles
}

func (b *BotMessageBlock) View(width int) string {
	header := b.styles.BotMsg.Render("Assistant") + " " + b.styles.Muted.Render(b.msg.Timestamp.Format(timeLayout))
	msg := b.msg
	msg.Text = sanitize(msg.Text)
	msg.Sources = make([]chatlib.Source, len(b.msg.Sources))
	for i, src := range b.msg.Sources {
		msg.Sources[i] = chatlib.Source{Title: sanitizeLine(src.Title), URL: sanitizeLine(src.URL), Snippet: sanitize(src.Snippet)}
	}
	return header + "\n" + goldmark.RenderReply(msg, width, b.theme)
}

// ErrorBlock renders an error message.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render(fmt.Sprintf("Error: %v", b.err))
	return lipgloss.NewStyle().Width(width).Render(content)
}
