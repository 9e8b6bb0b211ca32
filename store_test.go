package chatlib_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/chatlib"
	chatjson "github.com/fwojciec/chatlib/json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store with deterministic ids and a clock that
// advances one second per reading.
func newTestStore(t *testing.T, opts ...chatlib.Option) *chatlib.Store {
	t.Helper()
	var n int
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	base := []chatlib.Option{
		chatlib.WithIDFunc(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		chatlib.WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
	}
	return chatlib.NewStore(chatjson.Codec{}, append(base, opts...)...)
}

// requireInvariants checks the store-wide invariants on a snapshot.
func requireInvariants(t *testing.T, st chatlib.State) {
	t.Helper()
	active := 0
	for _, s := range st.Sessions {
		require.NotEmpty(t, s.Messages, "session %s has no messages", s.ID)
		require.False(t, s.UpdatedAt.Before(s.CreatedAt), "session %s updated before created", s.ID)
		if s.IsActive {
			active++
			require.Equal(t, st.CurrentSessionID, s.ID)
		}
	}
	require.LessOrEqual(t, active, 1)
	if st.CurrentSessionID != "" {
		_, ok := st.Session(st.CurrentSessionID)
		require.True(t, ok, "current session %q does not exist", st.CurrentSessionID)
		require.Equal(t, 1, active)
	} else {
		require.Zero(t, active)
	}
}

func TestStore_CreateSession(t *testing.T) {
	t.Parallel()

	t.Run("seeds welcome message and becomes current", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)

		id := s.CreateSession("")

		st := s.State()
		assert.Equal(t, id, st.CurrentSessionID)
		require.Len(t, st.Sessions, 1)
		sess := st.Sessions[0]
		assert.Equal(t, chatlib.DefaultTitle, sess.Title)
		assert.True(t, sess.IsActive)
		assert.Equal(t, sess.CreatedAt, sess.UpdatedAt)
		require.Len(t, sess.Messages, 1)
		assert.True(t, sess.Messages[0].IsBot)
		assert.Equal(t, chatlib.DefaultWelcomeText, sess.Messages[0].Text)
		assert.NotEmpty(t, sess.Messages[0].ID)
		assert.Equal(t, sess.CreatedAt, sess.Messages[0].Timestamp)
	})

	t.Run("uses given title", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("Benefits")
		sess, ok := s.Session(id)
		require.True(t, ok)
		assert.Equal(t, "Benefits", sess.Title)
	})

	t.Run("whitespace title falls back to default", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("   ")
		sess, _ := s.Session(id)
		assert.Equal(t, chatlib.DefaultTitle, sess.Title)
	})

	t.Run("inserts newest first and deactivates others", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		b := s.CreateSession("B")

		st := s.State()
		require.Len(t, st.Sessions, 2)
		assert.Equal(t, b, st.Sessions[0].ID)
		assert.Equal(t, a, st.Sessions[1].ID)
		assert.True(t, st.Sessions[0].IsActive)
		assert.False(t, st.Sessions[1].IsActive)
		requireInvariants(t, st)
	})

	t.Run("custom welcome text", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t, chatlib.WithWelcomeText("Hi there"))
		id := s.CreateSession("")
		sess, _ := s.Session(id)
		assert.Equal(t, "Hi there", sess.Messages[0].Text)
	})

	t.Run("never reuses an id", func(t *testing.T) {
		t.Parallel()
		ids := []string{"dup", "m1", "dup", "dup", "fresh", "m2"}
		s := chatlib.NewStore(chatjson.Codec{}, chatlib.WithIDFunc(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}))
		first := s.CreateSession("")
		second := s.CreateSession("")
		assert.Equal(t, "dup", first)
		assert.Equal(t, "fresh", second)
	})

	t.Run("constant id generator falls back to uuid", func(t *testing.T) {
		t.Parallel()
		s := chatlib.NewStore(chatjson.Codec{}, chatlib.WithIDFunc(func() string { return "same" }))
		first := s.CreateSession("")
		second := s.CreateSession("")
		third := s.CreateSession("")
		assert.Equal(t, "same", first)
		assert.NotEqual(t, first, second)
		assert.NotEqual(t, second, third)
		_, err := uuid.Parse(second)
		assert.NoError(t, err)
		assert.Len(t, s.State().Sessions, 3)
	})
}

func TestStore_DeleteSession(t *testing.T) {
	t.Parallel()

	t.Run("create delete fallback scenario", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		b := s.CreateSession("B")
		c := s.CreateSession("C")
		assert.Equal(t, c, s.State().CurrentSessionID)

		s.DeleteSession(c)
		st := s.State()
		assert.Equal(t, b, st.CurrentSessionID)
		requireInvariants(t, st)

		s.DeleteSession(a)
		s.DeleteSession(b)
		st = s.State()
		assert.Empty(t, st.CurrentSessionID)
		assert.Empty(t, st.Sessions)
		requireInvariants(t, st)
	})

	t.Run("deleting a non-current session keeps the pointer", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		b := s.CreateSession("B")

		s.DeleteSession(a)

		st := s.State()
		assert.Equal(t, b, st.CurrentSessionID)
		require.Len(t, st.Sessions, 1)
		assert.True(t, st.Sessions[0].IsActive)
	})

	t.Run("falls back to front of collection", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		b := s.CreateSession("B")
		c := s.CreateSession("C")
		s.SetActiveSession(b)

		s.DeleteSession(b)

		assert.Equal(t, c, s.State().CurrentSessionID)
		_, ok := s.Session(a)
		assert.True(t, ok)
	})
}

func TestStore_NoOpsOnUnknownSession(t *testing.T) {
	t.Parallel()

	ops := map[string]func(s *chatlib.Store){
		"delete":   func(s *chatlib.Store) { s.DeleteSession("missing") },
		"rename":   func(s *chatlib.Store) { s.UpdateSessionTitle("missing", "x") },
		"add":      func(s *chatlib.Store) { s.AddMessage("missing", chatlib.Message{Text: "hi"}) },
		"activate": func(s *chatlib.Store) { s.SetActiveSession("missing") },
		"clear":    func(s *chatlib.Store) { s.ClearSession("missing") },
		"empty id": func(s *chatlib.Store) { s.SetActiveSession("") },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)
			s.CreateSession("A")
			s.CreateSession("B")
			before := s.State()

			notified := 0
			unsubscribe := s.Subscribe(func(chatlib.State) { notified++ })
			defer unsubscribe()

			op(s)

			assert.Equal(t, before, s.State())
			assert.Zero(t, notified)
		})
	}
}

func TestStore_UpdateSessionTitle(t *testing.T) {
	t.Parallel()

	t.Run("sets title and bumps updated time", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		before, _ := s.Session(id)

		s.UpdateSessionTitle(id, "Loan Question")

		after, _ := s.Session(id)
		assert.Equal(t, "Loan Question", after.Title)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
	})

	t.Run("empty title is ignored", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("Keep")
		before := s.State()

		s.UpdateSessionTitle(id, "")

		assert.Equal(t, before, s.State())
	})
}

func TestStore_SetActiveSession(t *testing.T) {
	t.Parallel()

	t.Run("moves pointer and flags", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		s.CreateSession("B")

		s.SetActiveSession(a)

		st := s.State()
		assert.Equal(t, a, st.CurrentSessionID)
		current, ok := st.Current()
		require.True(t, ok)
		assert.Equal(t, "A", current.Title)
		requireInvariants(t, st)
	})

	t.Run("activating the current session does not notify", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("A")
		notified := 0
		s.Subscribe(func(chatlib.State) { notified++ })

		s.SetActiveSession(id)

		assert.Zero(t, notified)
	})
}

func TestStore_AddMessage(t *testing.T) {
	t.Parallel()

	t.Run("appends and bumps updated time", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		before, _ := s.Session(id)

		s.AddMessage(id, chatlib.Message{Text: "hello"})

		after, _ := s.Session(id)
		require.Len(t, after.Messages, 2)
		assert.Equal(t, "hello", after.Messages[1].Text)
		assert.NotEmpty(t, after.Messages[1].ID)
		assert.False(t, after.Messages[1].Timestamp.IsZero())
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("keeps given id and timestamp", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		s.AddMessage(id, chatlib.Message{ID: "mine", Text: "hi", Timestamp: ts})

		sess, _ := s.Session(id)
		assert.Equal(t, "mine", sess.Messages[1].ID)
		assert.Equal(t, ts, sess.Messages[1].Timestamp)
	})

	t.Run("derives title from first user message", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")

		s.AddMessage(id, chatlib.Message{Text: strings.Repeat("A", 80)})

		sess, _ := s.Session(id)
		assert.Equal(t, strings.Repeat("A", 50)+"...", sess.Title)

		s.AddMessage(id, chatlib.Message{Text: "second question"})
		sess, _ = s.Session(id)
		assert.Equal(t, strings.Repeat("A", 50)+"...", sess.Title)
	})

	t.Run("flattens newlines in derived title", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")

		s.AddMessage(id, chatlib.Message{Text: "  How do I\nopen an account?\n"})

		sess, _ := s.Session(id)
		assert.Equal(t, "How do I open an account?", sess.Title)
	})

	t.Run("overrides explicit title on first user message", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("Custom")

		s.AddMessage(id, chatlib.Message{Text: "question"})

		sess, _ := s.Session(id)
		assert.Equal(t, "question", sess.Title)
	})

	t.Run("bot messages never derive a title", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")

		s.AddMessage(id, chatlib.Message{Text: "bot follow-up", IsBot: true})
		s.AddMessage(id, chatlib.Message{Text: "user question"})

		sess, _ := s.Session(id)
		assert.Equal(t, chatlib.DefaultTitle, sess.Title)
	})

	t.Run("whitespace message keeps title", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("Kept")

		s.AddMessage(id, chatlib.Message{Text: " \n "})

		sess, _ := s.Session(id)
		assert.Equal(t, "Kept", sess.Title)
	})

	t.Run("copies sources", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		sources := []chatlib.Source{{Title: "Handbook"}}

		s.AddMessage(id, chatlib.Message{Text: "answer", IsBot: true, Sources: sources})
		sources[0].Title = "changed"

		sess, _ := s.Session(id)
		assert.Equal(t, "Handbook", sess.Messages[1].Sources[0].Title)
	})
}

func TestStore_ClearSession(t *testing.T) {
	t.Parallel()

	t.Run("clear preserves title", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		s.UpdateSessionTitle(id, "Loan Question")
		s.AddMessage(id, chatlib.Message{Text: "one"})
		s.AddMessage(id, chatlib.Message{Text: "two", IsBot: true})
		s.AddMessage(id, chatlib.Message{Text: "three"})
		before, _ := s.Session(id)

		s.ClearSession(id)

		sess, _ := s.Session(id)
		require.Len(t, sess.Messages, 1)
		assert.True(t, sess.Messages[0].IsBot)
		assert.Equal(t, chatlib.DefaultWelcomeText, sess.Messages[0].Text)
		assert.Equal(t, "Loan Question", sess.Title)
		assert.True(t, sess.Messages[0].Timestamp.After(before.Messages[0].Timestamp))
		assert.True(t, sess.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("first user message after clear renames again", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		s.AddMessage(id, chatlib.Message{Text: "first"})
		s.ClearSession(id)

		s.AddMessage(id, chatlib.Message{Text: "second topic"})

		sess, _ := s.Session(id)
		assert.Equal(t, "second topic", sess.Title)
	})
}

func TestStore_ExportImport(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("")
		s.AddMessage(id, chatlib.Message{Text: "What documents do I need?"})
		s.AddMessage(id, chatlib.Message{
			Text:    "Bring your ID.",
			IsBot:   true,
			Sources: []chatlib.Source{{Title: "Onboarding checklist", URL: "https://intra/checklist"}},
		})
		original, _ := s.Session(id)

		data := s.ExportSession(id)
		require.NotEmpty(t, data)

		imported, err := s.ImportSession([]byte(data))
		require.NoError(t, err)
		assert.NotEqual(t, id, imported)

		got, ok := s.Session(imported)
		require.True(t, ok)
		assert.Equal(t, original.Title, got.Title)
		assert.True(t, original.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, original.UpdatedAt.Equal(got.UpdatedAt))
		require.Len(t, got.Messages, len(original.Messages))
		for i := range original.Messages {
			assert.Equal(t, original.Messages[i].Text, got.Messages[i].Text)
			assert.Equal(t, original.Messages[i].IsBot, got.Messages[i].IsBot)
			assert.Equal(t, original.Messages[i].Sources, got.Messages[i].Sources)
			assert.True(t, original.Messages[i].Timestamp.Equal(got.Messages[i].Timestamp))
		}
	})

	t.Run("import is inactive at front and keeps pointer", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		a := s.CreateSession("A")
		b := s.CreateSession("B")
		data := s.ExportSession(b)

		imported, err := s.ImportSession([]byte(data))
		require.NoError(t, err)

		st := s.State()
		require.Len(t, st.Sessions, 3)
		assert.Equal(t, imported, st.Sessions[0].ID)
		assert.False(t, st.Sessions[0].IsActive)
		assert.Equal(t, b, st.CurrentSessionID)
		_, ok := st.Session(a)
		assert.True(t, ok)
		requireInvariants(t, st)
	})

	t.Run("export of missing session is empty", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		assert.Empty(t, s.ExportSession("missing"))
	})

	t.Run("export is pretty printed", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := s.CreateSession("Pretty")
		assert.Contains(t, s.ExportSession(id), "\n  \"title\": \"Pretty\"")
	})

	t.Run("empty title on import falls back to default", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		payload := `{"version": 1, "id": "x", "title": "", "created_at": "2024-01-01T00:00:00Z",
			"updated_at": "2024-01-01T00:00:00Z",
			"messages": [{"id": "m", "text": "hi", "is_bot": true, "timestamp": "2024-01-01T00:00:00Z"}]}`

		id, err := s.ImportSession([]byte(payload))
		require.NoError(t, err)
		sess, _ := s.Session(id)
		assert.Equal(t, chatlib.DefaultTitle, sess.Title)
	})

	t.Run("missing message ids are minted", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		payload := `{"version": 1, "title": "t", "created_at": "2024-01-01T00:00:00Z",
			"updated_at": "2024-01-01T00:00:00Z",
			"messages": [{"text": "hi", "is_bot": true, "timestamp": "2024-01-01T00:00:00Z"}]}`

		id, err := s.ImportSession([]byte(payload))
		require.NoError(t, err)
		sess, _ := s.Session(id)
		assert.NotEmpty(t, sess.Messages[0].ID)
	})
}

func TestStore_ImportMalformed(t *testing.T) {
	t.Parallel()

	payloads := map[string]string{
		"not json":       `{{`,
		"wrong version":  `{"version": 9}`,
		"bad timestamp":  `{"version": 1, "created_at": "soon", "updated_at": "2024-01-01T00:00:00Z", "messages": []}`,
		"no messages":    `{"version": 1, "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z", "messages": []}`,
		"time inversion": `{"version": 1, "created_at": "2024-01-02T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z", "messages": [{"text": "x", "timestamp": "2024-01-01T00:00:00Z"}]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)
			s.CreateSession("A")
			before := s.State()
			notified := 0
			s.Subscribe(func(chatlib.State) { notified++ })

			id, err := s.ImportSession([]byte(payload))

			require.Error(t, err)
			assert.ErrorIs(t, err, chatlib.ErrMalformedImport)
			assert.Empty(t, id)
			assert.Equal(t, before, s.State())
			assert.Zero(t, notified)
		})
	}
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("receives snapshot after each mutation", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var got []chatlib.State
		s.Subscribe(func(st chatlib.State) { got = append(got, st) })

		id := s.CreateSession("A")
		s.AddMessage(id, chatlib.Message{Text: "hi"})
		s.DeleteSession(id)

		require.Len(t, got, 3)
		assert.Len(t, got[0].Sessions, 1)
		assert.Len(t, got[1].Sessions[0].Messages, 2)
		assert.Empty(t, got[2].Sessions)
	})

	t.Run("snapshots are isolated from the store", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		var snap chatlib.State
		s.Subscribe(func(st chatlib.State) { snap = st })
		id := s.CreateSession("A")

		snap.Sessions[0].Title = "mutated"
		snap.Sessions[0].Messages[0].Text = "mutated"

		sess, _ := s.Session(id)
		assert.Equal(t, "A", sess.Title)
		assert.Equal(t, chatlib.DefaultWelcomeText, sess.Messages[0].Text)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		calls := 0
		unsubscribe := s.Subscribe(func(chatlib.State) { calls++ })
		s.CreateSession("A")
		unsubscribe()
		s.CreateSession("B")
		assert.Equal(t, 1, calls)
	})
}

func TestStore_Restore(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	session := func(id string) chatlib.Session {
		return chatlib.Session{
			ID:        id,
			Title:     id,
			CreatedAt: ts,
			UpdatedAt: ts,
			Messages:  []chatlib.Message{{ID: id + "-m", Text: "welcome", IsBot: true, Timestamp: ts}},
		}
	}

	t.Run("replaces state and recomputes active flags", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		s.CreateSession("discarded")
		a, b := session("a"), session("b")
		a.IsActive = true

		s.Restore(chatlib.State{Sessions: []chatlib.Session{a, b}, CurrentSessionID: "b"})

		st := s.State()
		require.Len(t, st.Sessions, 2)
		assert.Equal(t, "b", st.CurrentSessionID)
		assert.False(t, st.Sessions[0].IsActive)
		assert.True(t, st.Sessions[1].IsActive)
		requireInvariants(t, st)
	})

	t.Run("repoints dangling current session", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		s.Restore(chatlib.State{Sessions: []chatlib.Session{session("a"), session("b")}, CurrentSessionID: "gone"})
		assert.Equal(t, "a", s.State().CurrentSessionID)
		requireInvariants(t, s.State())
	})

	t.Run("dangling pointer with no sessions becomes empty", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		s.Restore(chatlib.State{CurrentSessionID: "gone"})
		assert.Empty(t, s.State().CurrentSessionID)
	})

	t.Run("reseeds empty sessions and clamps times", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		broken := session("a")
		broken.Messages = nil
		broken.UpdatedAt = ts.Add(-time.Hour)

		s.Restore(chatlib.State{Sessions: []chatlib.Session{broken}})

		st := s.State()
		require.Len(t, st.Sessions[0].Messages, 1)
		assert.True(t, st.Sessions[0].Messages[0].IsBot)
		assert.Equal(t, ts, st.Sessions[0].UpdatedAt)
		requireInvariants(t, st)
	})

	t.Run("drops duplicate ids", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		first := session("a")
		dup := session("a")
		dup.Title = "dup"

		s.Restore(chatlib.State{Sessions: []chatlib.Session{first, dup, session("")}})

		st := s.State()
		require.Len(t, st.Sessions, 1)
		assert.Equal(t, "a", st.Sessions[0].Title)
	})

	t.Run("no current session is kept as none", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		s.Restore(chatlib.State{Sessions: []chatlib.Session{session("a")}})
		st := s.State()
		assert.Empty(t, st.CurrentSessionID)
		requireInvariants(t, st)
	})
}

func TestStore_RehydrationThroughFileStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := chatjson.NewFileStore(t.TempDir())
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := newTestStore(t)
	id := s.CreateSession("")
	s.AddMessage(id, chatlib.Message{Text: "New year question", Timestamp: want})
	require.NoError(t, fs.Save(ctx, s.State()))

	loaded, err := fs.Load(ctx)
	require.NoError(t, err)
	restored := newTestStore(t)
	restored.Restore(loaded)

	sess, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	require.Len(t, sess.Messages, 2)
	var ts time.Time = sess.Messages[1].Timestamp
	assert.True(t, want.Equal(ts), "got %v", ts)
	assert.Equal(t, "New year question", sess.Title)
}

func TestStore_InvariantsHoldUnderRandomOperations(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	s := newTestStore(t)
	var ids []string

	pick := func() string {
		if len(ids) == 0 || rng.IntN(5) == 0 {
			return "unknown"
		}
		return ids[rng.IntN(len(ids))]
	}

	for i := 0; i < 500; i++ {
		switch rng.IntN(6) {
		case 0:
			ids = append(ids, s.CreateSession(""))
		case 1:
			s.DeleteSession(pick())
		case 2:
			s.SetActiveSession(pick())
		case 3:
			s.AddMessage(pick(), chatlib.Message{Text: fmt.Sprintf("msg %d", i), IsBot: rng.IntN(2) == 0})
		case 4:
			s.ClearSession(pick())
		case 5:
			if data := s.ExportSession(pick()); data != "" {
				id, err := s.ImportSession([]byte(data))
				require.NoError(t, err)
				ids = append(ids, id)
			}
		}
		requireInvariants(t, s.State())
	}
}
