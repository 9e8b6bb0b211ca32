package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// parseLogLevel converts a level name to a log level. Unknown names map
// to info.
func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// newLogger builds the process logger. With a file the log is appended
// there; otherwise it goes to fallback. The returned closer releases the
// file, if any.
func newLogger(level, file string, fallback io.Writer) (*log.Logger, io.Closer, error) {
	var out io.Writer = fallback
	var closer io.Closer = io.NopCloser(nil)
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closer = f
	}
	logger := log.NewWithOptions(out, log.Options{Prefix: "chatlib"})
	logger.SetLevel(parseLogLevel(level))
	return logger, closer, nil
}
