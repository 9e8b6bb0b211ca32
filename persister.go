package chatlib

import "context"

// DefaultNamespace is the storage key the chat library is persisted under.
// It is distinct from the authentication store's key so clearing one never
// clears the other.
const DefaultNamespace = "chat-library-storage"

// Persister durably stores and restores the full store state.
//
// Load returns the zero State when nothing has been saved yet. Callers pass
// the loaded State to Store.Restore, which repairs any invariant the stored
// data no longer satisfies.
type Persister interface {
	Save(ctx context.Context, s State) error
	Load(ctx context.Context) (State, error)
}

// SessionCodec serializes a single session for export and import.
//
// DecodeSession must return real time values for every timestamp, not
// whatever the wire format carried.
type SessionCodec interface {
	EncodeSession(s Session) ([]byte, error)
	DecodeSession(data []byte) (Session, error)
}
