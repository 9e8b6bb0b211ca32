package chatlib

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Store owns the chat sessions and the current-session pointer.
//
// Every method runs to completion synchronously and leaves the store
// satisfying its invariants: the current pointer is "" or names an existing
// session, exactly that session is marked active, and every session holds
// at least one message. Operations on an unknown session id are silent
// no-ops. Store performs no I/O; subscribers receive a deep-copied State
// after each mutation and are responsible for persisting it.
//
// A Store is not safe for concurrent use.
type Store struct {
	codec   SessionCodec
	now     func() time.Time
	newID   func() string
	welcome string
	logger  *log.Logger

	state   State
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(State)
}

// Option configures a [Store].
type Option func(*Store)

// WithClock sets the time source. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc sets the generator for session and message ids. Default is
// a time-ordered UUIDv7.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger for diagnostics. Default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithWelcomeText sets the text of the seeded welcome message.
func WithWelcomeText(text string) Option {
	return func(s *Store) { s.welcome = text }
}

// NewStore returns an empty store that exports and imports sessions with
// codec.
func NewStore(codec SessionCodec, opts ...Option) *Store {
	s := &Store{
		codec:   codec,
		now:     time.Now,
		newID:   NewID,
		welcome: DefaultWelcomeText,
		logger:  log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewID returns a UUIDv7 string. UUIDv7 values sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns a snapshot of the store.
func (s *Store) State() State {
	return s.state.Clone()
}

// Session returns a copy of the session with the given id.
func (s *Store) Session(id string) (Session, bool) {
	sess, ok := s.state.Session(id)
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// Current returns a copy of the current session, if any.
func (s *Store) Current() (Session, bool) {
	return s.Session(s.state.CurrentSessionID)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// CreateSession adds a new session at the front of the collection and makes
// it current. An empty title is replaced by DefaultTitle.
func (s *Store) CreateSession(title string) string {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	now := s.now()
	sess := Session{
		ID:        s.uniqueID(),
		Title:     title,
		Messages:  []Message{s.welcomeMessage(now)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.Sessions = slices.Insert(s.state.Sessions, 0, sess)
	s.activate(sess.ID)
	s.logger.Debug("session created", "id", sess.ID, "title", title)
	s.notify()
	return sess.ID
}

// DeleteSession removes a session. Deleting the current session moves the
// pointer to the first remaining session, or clears it when none remain.
func (s *Store) DeleteSession(id string) {
	i := s.state.index(id)
	if i < 0 {
		s.logger.Debug("delete: session not found", "id", id)
		return
	}
	s.state.Sessions = slices.Delete(s.state.Sessions, i, i+1)
	if s.state.CurrentSessionID == id {
		next := ""
		if len(s.state.Sessions) > 0 {
			next = s.state.Sessions[0].ID
		}
		s.activate(next)
	}
	s.logger.Debug("session deleted", "id", id, "current", s.state.CurrentSessionID)
	s.notify()
}

// UpdateSessionTitle renames a session. Callers are expected to trim and
// validate user input; the store only rejects the empty string.
func (s *Store) UpdateSessionTitle(id, title string) {
	if title == "" {
		s.logger.Warn("rename: empty title ignored", "id", id)
		return
	}
	sess := s.find(id)
	if sess == nil {
		s.logger.Debug("rename: session not found", "id", id)
		return
	}
	sess.Title = title
	s.touch(sess)
	s.notify()
}

// SetActiveSession makes id the current session. Unknown ids leave the
// pointer unchanged; they usually come from stale UI state.
func (s *Store) SetActiveSession(id string) {
	if s.state.index(id) < 0 {
		s.logger.Warn("activate: session not found", "id", id)
		return
	}
	if s.state.CurrentSessionID == id {
		return
	}
	s.activate(id)
	s.notify()
}

// AddMessage appends m to a session. A missing ID or zero Timestamp is
// filled in. The first non-bot message following the welcome message
// names the session (see DeriveTitle).
func (s *Store) AddMessage(id string, m Message) {
	sess := s.find(id)
	if sess == nil {
		s.logger.Debug("add message: session not found", "id", id)
		return
	}
	if m.ID == "" {
		m.ID = s.newID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	deriveTitle := len(sess.Messages) == 1 && !m.IsBot
	sess.Messages = append(sess.Messages, m.clone())
	if deriveTitle {
		if title := DeriveTitle(m.Text); title != "" {
			sess.Title = title
		}
	}
	s.touch(sess)
	s.notify()
}

// ClearSession resets a session to a fresh welcome message. The title is
// kept.
func (s *Store) ClearSession(id string) {
	sess := s.find(id)
	if sess == nil {
		s.logger.Debug("clear: session not found", "id", id)
		return
	}
	sess.Messages = []Message{s.welcomeMessage(s.now())}
	s.touch(sess)
	s.notify()
}

// ExportSession serializes one session. It returns "" when the session
// does not exist or cannot be encoded.
func (s *Store) ExportSession(id string) string {
	sess, ok := s.state.Session(id)
	if !ok {
		s.logger.Debug("export: session not found", "id", id)
		return ""
	}
	data, err := s.codec.EncodeSession(sess.clone())
	if err != nil {
		s.logger.Error("export failed", "id", id, "err", err)
		return ""
	}
	return string(data)
}

// ImportSession decodes an exported session and inserts it, inactive, at
// the front of the collection under a freshly minted id. On failure the
// store is left untouched and the returned error wraps ErrMalformedImport.
func (s *Store) ImportSession(data []byte) (string, error) {
	sess, err := s.codec.DecodeSession(data)
	if err == nil {
		err = validateImport(&sess)
	}
	if err != nil {
		s.logger.Error("import failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == "" {
			sess.Messages[i].ID = s.newID()
		}
	}
	sess.ID = s.uniqueID()
	sess.IsActive = false
	s.state.Sessions = slices.Insert(s.state.Sessions, 0, sess)
	s.logger.Debug("session imported", "id", sess.ID, "messages", len(sess.Messages))
	s.notify()
	return sess.ID, nil
}

// Restore replaces the in-memory state wholesale with st, typically the
// result of Persister.Load. Stored data that violates an invariant is
// repaired and the repair logged.
func (s *Store) Restore(st State) {
	st = st.Clone()
	seen := make(map[string]bool, len(st.Sessions))
	sessions := st.Sessions[:0]
	for _, sess := range st.Sessions {
		if sess.ID == "" || seen[sess.ID] {
			s.logger.Warn("restore: dropping session with missing or duplicate id", "id", sess.ID)
			continue
		}
		seen[sess.ID] = true
		if len(sess.Messages) == 0 {
			s.logger.Warn("restore: reseeding empty session", "id", sess.ID)
			sess.Messages = []Message{s.welcomeMessage(s.now())}
		}
		if sess.UpdatedAt.Before(sess.CreatedAt) {
			s.logger.Warn("restore: updated before created", "id", sess.ID)
			sess.UpdatedAt = sess.CreatedAt
		}
		sessions = append(sessions, sess)
	}
	st.Sessions = sessions
	s.state = st

	current := st.CurrentSessionID
	if current != "" && !seen[current] {
		s.logger.Warn("restore: current session missing", "id", current)
		current = ""
		if len(sessions) > 0 {
			current = sessions[0].ID
		}
	}
	s.activate(current)
	s.logger.Debug("store restored", "sessions", len(sessions), "current", current)
	s.notify()
}

func validateImport(sess *Session) error {
	if len(sess.Messages) == 0 {
		return errors.New("session has no messages")
	}
	if sess.CreatedAt.IsZero() {
		return errors.New("missing created_at")
	}
	if sess.UpdatedAt.Before(sess.CreatedAt) {
		return errors.New("updated_at precedes created_at")
	}
	for i, m := range sess.Messages {
		if m.Timestamp.IsZero() {
			return fmt.Errorf("message %d: missing timestamp", i)
		}
	}
	if strings.TrimSpace(sess.Title) == "" {
		sess.Title = DefaultTitle
	}
	return nil
}

func (s *Store) find(id string) *Session {
	if i := s.state.index(id); i >= 0 {
		return &s.state.Sessions[i]
	}
	return nil
}

// activate points the store at id ("" for none) and realigns IsActive.
func (s *Store) activate(id string) {
	s.state.CurrentSessionID = id
	for i := range s.state.Sessions {
		s.state.Sessions[i].IsActive = s.state.Sessions[i].ID == id
	}
}

// touch advances UpdatedAt, never letting it fall behind CreatedAt.
func (s *Store) touch(sess *Session) {
	now := s.now()
	if now.Before(sess.CreatedAt) {
		now = sess.CreatedAt
	}
	sess.UpdatedAt = now
}

// maxIDAttempts bounds retries of a colliding id generator before falling
// back to NewID.
const maxIDAttempts = 8

func (s *Store) uniqueID() string {
	for range maxIDAttempts {
		if id := s.newID(); s.state.index(id) < 0 {
			return id
		}
	}
	s.logger.Warn("id generator keeps colliding, using UUIDv7")
	for {
		if id := NewID(); s.state.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) welcomeMessage(now time.Time) Message {
	return Message{
		ID:        s.newID(),
		Text:      s.welcome,
		IsBot:     true,
		Timestamp: now,
	}
}

func (s *Store) notify() {
	for _, sub := range slices.Clone(s.subs) {
		sub.fn(s.state.Clone())
	}
}
