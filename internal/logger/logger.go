// Package logger builds the process wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing to stdout and, when path is non-empty, to
// the file at path as well. Development environments get the text
// handler at debug level; everything else gets JSON at info level.
func New(env, path string) (*slog.Logger, error) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	return slog.New(handlerFor(env, w)), nil
}

func handlerFor(env string, w io.Writer) slog.Handler {
	switch strings.ToLower(env) {
	case "dev", "development", "local", "test":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// Discard returns a logger that drops every record. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
