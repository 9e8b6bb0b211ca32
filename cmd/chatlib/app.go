package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/chatlib"
	chatjson "github.com/fwojciec/chatlib/json"
	"github.com/spf13/cobra"
)

const tuiAnnotation = "tui"

// app holds what every command needs: resolved config, the rehydrated
// store and the autosaver persisting it.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	cfg        config
	logger     *log.Logger
	store      *chatlib.Store

	closers []io.Closer
	stop    context.CancelFunc
	done    chan struct{}
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// setup resolves configuration, rehydrates the store from storage and
// starts autosaving. No mutation happens before Restore.
func (a *app) setup(cmd *cobra.Command) error {
	v, err := newViper(cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logFile := cfg.LogFile
	if logFile == "" && cmd.Annotations[tuiAnnotation] == "true" {
		logFile = filepath.Join(cfg.StorageDir, "chatlib.log")
	}
	logger, logCloser, err := newLogger(cfg.LogLevel, logFile, a.stderr)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, logCloser)

	persister, closer, err := newPersister(cfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)

	ctx := cmd.Context()
	state, err := persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	a.store = chatlib.NewStore(chatjson.Codec{}, chatlib.WithLogger(logger))
	a.store.Restore(state)
	logger.Debug("state loaded", "backend", cfg.StorageBackend, "sessions", len(state.Sessions))

	saver := chatlib.NewAutosaver(persister,
		chatlib.WithDebounce(cfg.Debounce),
		chatlib.WithAutosaveLogger(logger),
	)
	unsubscribe := a.store.Subscribe(saver.Notify)

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.done = make(chan struct{})
	a.stop = func() {
		stop()
		unsubscribe()
	}
	go func() {
		defer close(a.done)
		_ = saver.Run(runCtx)
	}()
	return nil
}

// close flushes pending saves and releases resources. It is safe to call
// when setup did not run or failed part way.
func (a *app) close() {
	if a.stop != nil {
		a.stop()
		select {
		case <-a.done:
		case <-time.After(10 * time.Second):
			a.logger.Error("autosave flush timed out")
		}
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(a.stderr, "chatlib: close: %v\n", err)
	}
}

// requireSession returns an error for ids the store does not know. The
// store itself ignores unknown ids; the CLI reports them.
func (a *app) requireSession(id string) (chatlib.Session, error) {
	sess, ok := a.store.Session(id)
	if !ok {
		return chatlib.Session{}, fmt.Errorf("session %s not found", id)
	}
	return sess, nil
}
