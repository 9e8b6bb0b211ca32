package chatlib

import "time"

// Message is a single entry in a conversation. Messages are append-only:
// once added to a session their text is never rewritten.
type Message struct {
	ID        string
	Text      string
	IsBot     bool
	Sources   []Source // citations; only set on retrieval-augmented bot replies
	Timestamp time.Time
}

// Source is a citation attached to a bot reply.
type Source struct {
	Title   string
	URL     string
	Snippet string
}

// clone returns a copy of m that shares no slices with it.
func (m Message) clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Source(nil), m.Sources...)
	}
	return m
}
