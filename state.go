package chatlib

// State is an immutable snapshot of the store: every session, newest
// created first, and the id of the current session ("" when none).
//
// CurrentSessionID is a lookup key into Sessions, never a handle. Callers
// resolve it with Current or Session.
type State struct {
	Sessions         []Session
	CurrentSessionID string
}

// Session returns the session with the given id.
func (s State) Session(id string) (Session, bool) {
	if i := s.index(id); i >= 0 {
		return s.Sessions[i], true
	}
	return Session{}, false
}

// Current returns the current session, if any.
func (s State) Current() (Session, bool) {
	if s.CurrentSessionID == "" {
		return Session{}, false
	}
	return s.Session(s.CurrentSessionID)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{CurrentSessionID: s.CurrentSessionID}
	if s.Sessions != nil {
		out.Sessions = make([]Session, len(s.Sessions))
		for i, sess := range s.Sessions {
			out.Sessions[i] = sess.clone()
		}
	}
	return out
}

func (s State) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return i
		}
	}
	return -1
}
