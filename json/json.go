// Package json implements the chat library's wire format: a versioned JSON
// envelope for the full store state and for single exported sessions, plus
// a file-backed [chatlib.Persister].
//
// Timestamps travel as RFC 3339 strings and are parsed back into
// time.Time values explicitly on decode; a payload whose timestamps do not
// parse is rejected rather than half-loaded.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/chatlib"
)

const version = 1

// stateEnvelope is the v1 wire format for the persisted store.
type stateEnvelope struct {
	Version          int          `json:"version"`
	CurrentSessionID string       `json:"current_session_id"`
	Sessions         []sessionDTO `json:"sessions"`
}

// sessionEnvelope is the v1 wire format for an exported session.
type sessionEnvelope struct {
	Version int `json:"version"`
	sessionDTO
}

type sessionDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Messages  []messageDTO `json:"messages"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
	IsActive  bool         `json:"is_active"`
}

type messageDTO struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	IsBot     bool        `json:"is_bot"`
	Sources   []sourceDTO `json:"sources,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type sourceDTO struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Interface compliance check.
var _ chatlib.SessionCodec = Codec{}

// Codec implements [chatlib.SessionCodec] with the v1 session envelope.
type Codec struct{}

// EncodeSession calls MarshalSession.
func (Codec) EncodeSession(s chatlib.Session) ([]byte, error) { return MarshalSession(s) }

// DecodeSession calls UnmarshalSession.
func (Codec) DecodeSession(data []byte) (chatlib.Session, error) { return UnmarshalSession(data) }

// MarshalState serializes the full store state.
func MarshalState(s chatlib.State) ([]byte, error) {
	env := stateEnvelope{
		Version:          version,
		CurrentSessionID: s.CurrentSessionID,
		Sessions:         make([]sessionDTO, len(s.Sessions)),
	}
	for i, sess := range s.Sessions {
		env.Sessions[i] = marshalSession(sess)
	}
	return json.Marshal(env)
}

// UnmarshalState deserializes the full store state, rehydrating every
// timestamp.
func UnmarshalState(data []byte) (chatlib.State, error) {
	var env stateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return chatlib.State{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != version {
		return chatlib.State{}, fmt.Errorf("%w: %d", chatlib.ErrUnsupportedVersion, env.Version)
	}
	st := chatlib.State{
		CurrentSessionID: env.CurrentSessionID,
		Sessions:         make([]chatlib.Session, len(env.Sessions)),
	}
	for i, dto := range env.Sessions {
		sess, err := unmarshalSession(dto)
		if err != nil {
			return chatlib.State{}, fmt.Errorf("session %d: %w", i, err)
		}
		st.Sessions[i] = sess
	}
	return st, nil
}

// MarshalSession serializes one session as indented, human-readable JSON.
func MarshalSession(s chatlib.Session) ([]byte, error) {
	env := sessionEnvelope{
		Version:    version,
		sessionDTO: marshalSession(s),
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes one exported session, rehydrating every
// timestamp.
func UnmarshalSession(data []byte) (chatlib.Session, error) {
	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return chatlib.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != version {
		return chatlib.Session{}, fmt.Errorf("%w: %d", chatlib.ErrUnsupportedVersion, env.Version)
	}
	return unmarshalSession(env.sessionDTO)
}

func marshalSession(s chatlib.Session) sessionDTO {
	dto := sessionDTO{
		ID:        s.ID,
		Title:     s.Title,
		Messages:  make([]messageDTO, len(s.Messages)),
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
		IsActive:  s.IsActive,
	}
	for i, m := range s.Messages {
		dto.Messages[i] = marshalMessage(m)
	}
	return dto
}

func unmarshalSession(dto sessionDTO) (chatlib.Session, error) {
	createdAt, err := parseTime("created_at", dto.CreatedAt)
	if err != nil {
		return chatlib.Session{}, err
	}
	updatedAt, err := parseTime("updated_at", dto.UpdatedAt)
	if err != nil {
		return chatlib.Session{}, err
	}
	msgs := make([]chatlib.Message, len(dto.Messages))
	for i, mdto := range dto.Messages {
		m, err := unmarshalMessage(mdto)
		if err != nil {
			return chatlib.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = m
	}
	return chatlib.Session{
		ID:        dto.ID,
		Title:     dto.Title,
		Messages:  msgs,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		IsActive:  dto.IsActive,
	}, nil
}

func marshalMessage(m chatlib.Message) messageDTO {
	dto := messageDTO{
		ID:        m.ID,
		Text:      m.Text,
		IsBot:     m.IsBot,
		Timestamp: formatTime(m.Timestamp),
	}
	if len(m.Sources) > 0 {
		dto.Sources = make([]sourceDTO, len(m.Sources))
		for i, src := range m.Sources {
			dto.Sources[i] = sourceDTO(src)
		}
	}
	return dto
}

func unmarshalMessage(dto messageDTO) (chatlib.Message, error) {
	ts, err := parseTime("timestamp", dto.Timestamp)
	if err != nil {
		return chatlib.Message{}, err
	}
	m := chatlib.Message{
		ID:        dto.ID,
		Text:      dto.Text,
		IsBot:     dto.IsBot,
		Timestamp: ts,
	}
	if len(dto.Sources) > 0 {
		m.Sources = make([]chatlib.Source, len(dto.Sources))
		for i, src := range dto.Sources {
			m.Sources[i] = chatlib.Source(src)
		}
	}
	return m, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// parseTime is the rehydration step: a string field becomes a time value or
// the whole payload is rejected.
func parseTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing %s", field)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return t, nil
}
