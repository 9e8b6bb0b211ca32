package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/chatlib"
	bt "github.com/fwojciec/chatlib/bubbletea"
	"github.com/fwojciec/chatlib/fs"
	"github.com/spf13/cobra"
)

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatlib",
		Short: "Onboarding assistant chat client",
		Long: `chatlib keeps several conversations with the onboarding assistant,
persists them locally and exports or imports single sessions as JSON.
Run without a subcommand to open the chat interface.`,
		Annotations:       map[string]string{tuiAnnotation: "true"},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		RunE:              a.runChat,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default $HOME/.chatlib/config.yaml)")
	f.String("storage-backend", "file", "storage backend: file, memory, redis")
	f.String("storage-dir", defaultDir(), "directory for the file backend and the TUI log")
	f.String("namespace", chatlib.DefaultNamespace, "storage namespace (file name or redis key)")
	f.String("redis-addr", "localhost:6379", "redis address or redis:// URL")
	f.String("answer-backend", "echo", "answer backend: echo, rest, gemini")
	f.String("answer-url", "", "endpoint for the rest answer backend")
	f.String("gemini-model", "", "Gemini model ID (default: backend default)")
	f.String("log-level", "info", "log level (debug|info|warn|error)")
	f.String("log-file", "", "write logs to file instead of stderr")
	f.Duration("autosave-debounce", 250*time.Millisecond, "delay before writing changes")

	root.AddCommand(
		&cobra.Command{
			Use:         "chat",
			Short:       "Open the chat interface (default)",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{tuiAnnotation: "true"},
			RunE:        a.runChat,
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List sessions, newest first",
			Args:    cobra.NoArgs,
			RunE:    a.runList,
		},
		&cobra.Command{
			Use:   "new [title]",
			Short: "Create a session and make it current",
			RunE:  a.runNew,
		},
		&cobra.Command{
			Use:   "rename <id> <title>",
			Short: "Rename a session",
			Args:  cobra.MinimumNArgs(2),
			RunE:  a.runRename,
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a session",
			Args:    cobra.ExactArgs(1),
			RunE:    a.runDelete,
		},
		&cobra.Command{
			Use:   "clear <id>",
			Short: "Reset a session to its welcome message, keeping its title",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runClear,
		},
		a.exportCommand(),
		&cobra.Command{
			Use:   "import <glob>...",
			Short: "Import exported sessions; patterns may use **",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runImport,
		},
	)
	return root
}

func (a *app) runChat(cmd *cobra.Command, _ []string) error {
	answerer, err := newAnswerer(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	m := bt.New(a.store, answerer, chatlib.DefaultTheme(), bt.WithLogger(a.logger))
	if err := bt.Run(cmd.Context(), m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	st := a.store.State()
	if len(st.Sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
		return nil
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("", "ID", "TITLE", "MESSAGES", "UPDATED")
	for _, sess := range st.Sessions {
		marker := ""
		if sess.ID == st.CurrentSessionID {
			marker = "*"
		}
		t.Row(marker, sess.ID, sess.Title, fmt.Sprint(len(sess.Messages)), sess.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func (a *app) runNew(cmd *cobra.Command, args []string) error {
	id := a.store.CreateSession(strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func (a *app) runRename(_ *cobra.Command, args []string) error {
	if _, err := a.requireSession(args[0]); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return bt.ErrEmptyTitle
	}
	a.store.UpdateSessionTitle(args[0], title)
	return nil
}

func (a *app) runDelete(_ *cobra.Command, args []string) error {
	if _, err := a.requireSession(args[0]); err != nil {
		return err
	}
	a.store.DeleteSession(args[0])
	return nil
}

func (a *app) runClear(_ *cobra.Command, args []string) error {
	if _, err := a.requireSession(args[0]); err != nil {
		return err
	}
	a.store.ClearSession(args[0])
	return nil
}

func (a *app) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Print a session as JSON, or write it with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(args[0]); err != nil {
				return err
			}
			data := a.store.ExportSession(args[0])
			if data == "" {
				return fmt.Errorf("export %s failed", args[0])
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), data)
				return nil
			}
			if err := os.WriteFile(output, []byte(data+"\n"), 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// runImport imports every file matched by the patterns. A bad file is
// reported and skipped; the command fails if any file failed.
func (a *app) runImport(cmd *cobra.Command, args []string) error {
	var files []string
	for _, arg := range args {
		root, pattern := fs.SplitPattern(arg)
		matches, err := fs.Glob(root, pattern)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files match %s", arg)
		}
		files = append(files, matches...)
	}

	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
			continue
		}
		id, err := a.store.ImportSession(data)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, file)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(files))
	}
	return nil
}
