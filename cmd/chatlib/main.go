// Command chatlib is a terminal chat client for the bank onboarding
// assistant. It keeps several conversations, persists them locally and
// can export and import single sessions.
//
// Usage:
//
//	chatlib [flags]                 start the chat TUI
//	chatlib list                    list sessions
//	chatlib new [title]             create a session
//	chatlib rename <id> <title>     rename a session
//	chatlib delete <id>             delete a session
//	chatlib clear <id>              reset a session to its welcome message
//	chatlib export <id> [-o file]   print or write a session export
//	chatlib import <glob>...        import exported sessions
//
// Settings come from flags, CHATLIB_* environment variables, a .env file
// and $HOME/.chatlib/config.yaml, in that order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "chatlib: load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatlib: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args. State is loaded before the
// command runs and flushed to storage before run returns.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := newApp(stdout, stderr)
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
