// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, and with the session and
// import ids stored by package core, so one request or import can be traced
// across every log line it produced.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JonMunkholm/datamanager/internal/config"
	"github.com/JonMunkholm/datamanager/internal/core"
)

// Options configures the global logger.
type Options struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // text or json (default: text)

	// File, when set, sends logs to a size-rotated file instead of Stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Stdout overrides the console writer; nil means os.Stdout.
	Stdout io.Writer
}

// Setup configures the global slog logger and returns a closer for the log
// file, if any. Closing it is a no-op for console logging.
//
// Use "json" format in production for machine parsing.
// Use "text" format in development for human readability.
func Setup(opts Options) io.Closer {
	var (
		w      io.Writer = opts.Stdout
		closer io.Closer = nopCloser{}
	)
	if w == nil {
		w = os.Stdout
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		w, closer = rotator, rotator
	}

	slog.SetDefault(slog.New(NewHandler(w, opts.Level, opts.Format)))
	return closer
}

// NewHandler builds a text or JSON handler writing to w at the given level.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	hopts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger enriched with the request id set
// by chi's RequestID middleware and the session and import ids, when present.
//
//	func handleSort(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("sorted", "column", id)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if sid := core.SessionIDFromContext(ctx); sid != "" {
		logger = logger.With("session_id", sid)
	}
	if iid := core.ImportIDFromContext(ctx); iid != "" {
		logger = logger.With("import_id", iid)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields,
// for operations that log several steps with the same attributes.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OptionsFrom maps the logging config section onto Options.
func OptionsFrom(c config.LoggingConfig) Options {
	return Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}
