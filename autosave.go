package chatlib

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Autosaver writes store snapshots to a Persister in the background.
//
// Notify never blocks: a snapshot that arrives while another is still
// pending replaces it, so only the latest state is written. Save failures
// are logged and dropped; the in-memory store stays authoritative.
type Autosaver struct {
	persister Persister
	debounce  time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	pending chan State
}

// AutosaverOption configures an [Autosaver].
type AutosaverOption func(*Autosaver)

// WithDebounce delays each write by d, absorbing snapshots that arrive in
// the meantime. Default is zero (write as soon as possible).
func WithDebounce(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.debounce = d }
}

// WithAutosaveLogger sets the logger for save failures.
func WithAutosaveLogger(l *log.Logger) AutosaverOption {
	return func(a *Autosaver) { a.logger = l }
}

// NewAutosaver creates an Autosaver for p. Subscribe its Notify method to a
// Store and start Run in a goroutine.
func NewAutosaver(p Persister, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		persister: p,
		logger:    log.New(io.Discard),
		pending:   make(chan State, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Notify queues s for saving, replacing any snapshot not yet written.
func (a *Autosaver) Notify(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.pending:
	default:
	}
	a.pending <- s
}

// Run saves queued snapshots until ctx is cancelled. The last pending
// snapshot is flushed before Run returns.
func (a *Autosaver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.flush(context.WithoutCancel(ctx))
			return nil
		case s := <-a.pending:
			if a.debounce > 0 {
				s = a.settle(ctx, s)
			}
			if ctx.Err() != nil {
				select {
				case s = <-a.pending:
				default:
				}
				a.save(context.WithoutCancel(ctx), s)
				return nil
			}
			a.save(ctx, s)
		}
	}
}

// settle waits out the debounce window, keeping the newest snapshot.
func (a *Autosaver) settle(ctx context.Context, s State) State {
	timer := time.NewTimer(a.debounce)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return s
		case <-ctx.Done():
			return s
		case next := <-a.pending:
			s = next
		}
	}
}

func (a *Autosaver) flush(ctx context.Context) {
	select {
	case s := <-a.pending:
		a.save(ctx, s)
	default:
	}
}

func (a *Autosaver) save(ctx context.Context, s State) {
	if err := a.persister.Save(ctx, s); err != nil {
		a.logger.Error("autosave failed", "sessions", len(s.Sessions), "err", err)
	}
}
