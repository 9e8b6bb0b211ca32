package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fwojciec/chatlib"
)

var _ tea.Model = Model{}

// ErrEmptyTitle is shown when /title is given no name.
var ErrEmptyTitle = errors.New("title cannot be empty")

// ErrNoConversation is shown when a question is sent with no current
// session.
var ErrNoConversation = errors.New("no conversation, press Ctrl+N to start one")

const titleCommand = "/title"

// Model is the Bubble Tea model for the chat TUI. It is the only writer to
// its store: every mutation happens inside Update.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	store    *chatlib.Store
	answerer chatlib.Answerer
	theme    chatlib.Theme
	styles   Styles
	logger   *log.Logger

	width   int
	height  int
	waiting bool
	cancel  context.CancelFunc
	err     error
	ready   bool
}

// ModelOption configures a [Model].
type ModelOption func(*Model)

// WithLogger sets the logger for answer failures. Default discards output.
func WithLogger(l *log.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// New creates a TUI Model over store. Replies come from answerer.
func New(store *chatlib.Store, answerer chatlib.Answerer, theme chatlib.Theme, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:    ti,
		store:    store,
		answerer: answerer,
		theme:    theme,
		styles:   NewStyles(theme),
		logger:   log.New(io.Discard),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Waiting returns whether an answer is pending.
func (m Model) Waiting() bool { return m.waiting }

// Err returns the last error shown in the status line, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AnswerMsg:
		return m.handleAnswer(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var chat strings.Builder
	chat.WriteString(m.Viewport.View())
	chat.WriteString("\n")
	chat.WriteString(m.statusLine())
	chat.WriteString("\n")
	chat.WriteString(m.Input.View())

	sw := sidebarWidth(m.width)
	if sw == 0 {
		return chat.String()
	}
	sidebar := renderSidebar(m.store.State(), sw, m.height, m.styles)
	border := m.styles.Border.Render(strings.TrimSuffix(strings.Repeat("│\n", m.height), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, border, chat.String())
}

func (m Model) chatWidth() int {
	sw := sidebarWidth(m.width)
	if sw == 0 {
		return m.width
	}
	return max(m.width-sw-1, 1)
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	inputHeight := 1
	statusHeight := 1
	vpHeight := max(msg.Height-inputHeight-statusHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(m.chatWidth(), vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = m.chatWidth()
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = max(m.chatWidth()-len([]rune(m.Input.Prompt))-1, 1)
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.waiting {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if name, ok := parseTitleCommand(text); ok {
			m.Input.SetValue("")
			return m.rename(name), nil
		}
		if m.waiting {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyCtrlN:
		m.err = nil
		m.store.CreateSession("")
		return m.refresh(), nil

	case tea.KeyCtrlX:
		m.err = nil
		if cur, ok := m.store.Current(); ok {
			m.store.DeleteSession(cur.ID)
		}
		return m.refresh(), nil

	case tea.KeyCtrlL:
		m.err = nil
		if cur, ok := m.store.Current(); ok {
			m.store.ClearSession(cur.ID)
		}
		return m.refresh(), nil

	case tea.KeyCtrlUp:
		return m.step(-1), nil

	case tea.KeyCtrlDown:
		return m.step(1), nil
	}

	// Only forward non-character keys to the viewport so 'j'/'k' type
	// text instead of scrolling.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// parseTitleCommand recognizes "/title <name>" and returns the trimmed name.
func parseTitleCommand(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, titleCommand)
	if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func (m Model) rename(name string) Model {
	if name == "" {
		m.err = ErrEmptyTitle
		return m
	}
	m.err = nil
	if cur, ok := m.store.Current(); ok {
		m.store.UpdateSessionTitle(cur.ID, name)
	}
	return m.refresh()
}

// step moves the current pointer by delta in sidebar order, wrapping.
func (m Model) step(delta int) Model {
	st := m.store.State()
	n := len(st.Sessions)
	if n == 0 {
		return m
	}
	idx := 0
	for i, sess := range st.Sessions {
		if sess.ID == st.CurrentSessionID {
			idx = (i + delta + n) % n
			break
		}
	}
	m.store.SetActiveSession(st.Sessions[idx].ID)
	return m.refresh()
}

// submit appends the user message to the current session and asks for a
// reply. Without a current session the input is kept and nothing changes.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	cur, ok := m.store.Current()
	if !ok {
		m.err = ErrNoConversation
		return m.refresh(), nil
	}
	m.Input.SetValue("")
	m.err = nil

	m.store.AddMessage(cur.ID, chatlib.Message{Text: text})
	sess, _ := m.store.Session(cur.ID)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.waiting = true
	return m.refresh(), ask(ctx, m.answerer, sess.ID, sess.Messages)
}

// handleAnswer appends a reply to the session it was asked in. A session
// deleted while waiting makes the append a no-op.
func (m Model) handleAnswer(msg AnswerMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.waiting = false
	m.cancel = nil
	switch {
	case errors.Is(msg.Err, context.Canceled):
	case msg.Err != nil:
		m.logger.Error("answer failed", "session", msg.SessionID, "err", msg.Err)
		m.err = msg.Err
	default:
		m.store.AddMessage(msg.SessionID, msg.Reply.Message())
	}
	return m.refresh(), nil
}

// refresh re-renders the current session into the viewport.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	cur, ok := m.store.Current()
	if !ok {
		return m.styles.Muted.Render("No conversation. Press Ctrl+N to start one.")
	}
	width := m.Viewport.Width
	blocks := make([]string, 0, len(cur.Messages)+1)
	for _, msg := range cur.Messages {
		blocks = append(blocks, NewMessageBlock(msg, m.theme, m.styles).View(width))
	}
	if m.err != nil {
		blocks = append(blocks, NewErrorBlock(m.err, m.styles).View(width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.waiting {
		return m.styles.Muted.Render("Thinking...")
	}
	if cur, ok := m.store.Current(); ok {
		return m.styles.Accent.Render(sanitizeLine(cur.Title)) + m.styles.Muted.Render("  Enter send · Ctrl+N new · Ctrl+X delete · Ctrl+L clear · Ctrl+↑/↓ switch · /title rename")
	}
	return m.styles.Muted.Render("Ctrl+N new · Ctrl+C quit")
}

// ask requests a reply in the background and reports it as an AnswerMsg.
func ask(ctx context.Context, a chatlib.Answerer, sessionID string, history []chatlib.Message) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.Answer(ctx, history)
		return AnswerMsg{SessionID: sessionID, Reply: reply, Err: err}
	}
}
