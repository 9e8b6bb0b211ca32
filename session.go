package chatlib

import "time"

// DefaultTitle is the title given to sessions created without one.
const DefaultTitle = "New Conversation"

// DefaultWelcomeText is the seeded bot message every session starts with.
const DefaultWelcomeText = "Hello! I'm your onboarding assistant. Ask me anything about your accounts, policies or first weeks at the bank."

// Session is one independent, titled conversation thread.
type Session struct {
	ID        string
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time

	// IsActive mirrors whether this session is the store's current session.
	// It is recomputed by the store and never trusted from input.
	IsActive bool
}

func (s Session) clone() Session {
	msgs := make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = m.clone()
	}
	s.Messages = msgs
	return s
}

// LastMessage returns the most recent message in the session.
func (s Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
