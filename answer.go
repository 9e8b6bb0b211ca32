package chatlib

import "context"

// Reply is a generated answer together with the documents it cites.
type Reply struct {
	Text    string
	Sources []Source
}

// Answerer produces a reply to the last user message in history.
// The store never calls it; the UI does, and appends the reply itself.
type Answerer interface {
	Answer(ctx context.Context, history []Message) (Reply, error)
}

// Message converts the reply into a bot-authored message. ID and Timestamp
// are left for the store to assign.
func (r Reply) Message() Message {
	return Message{
		Text:    r.Text,
		IsBot:   true,
		Sources: append([]Source(nil), r.Sources...),
	}
}

// LastUserText returns the text of the most recent user message in history.
func LastUserText(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].IsBot {
			return history[i].Text
		}
	}
	return ""
}
