// Package logs builds the process logger.
//
// Records fan out to a text handler on the terminal and, when configured, a
// JSON log file and the systemd journal. A run ID stored in the context is
// attached to every record logged with that context.
package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options selects the handlers of a logger.
type Options struct {
	// Verbose lowers the level to Debug.
	Verbose bool

	// Writer receives the text output. Defaults to os.Stderr.
	Writer io.Writer

	// File receives a JSON copy of every record.
	File io.Writer

	// Journal adds the systemd journal handler.
	Journal bool
}

// Logger is the process logger together with the level it was built with.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar
}

// New builds a logger from opts.
func New(opts Options) *Logger {
	level := new(slog.LevelVar)
	if opts.Verbose {
		level.Set(slog.LevelDebug)
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	terminal := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	handlers := []slog.Handler{terminal}

	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{Level: level}))
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return journalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = terminal.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journal)
		}
	}

	return &Logger{
		Logger: slog.New(&runHandler{Handler: slogmulti.Fanout(handlers...)}),
		Level:  level,
	}
}

// Install makes l the slog default logger.
func (l *Logger) Install() {
	slog.SetDefault(l.Logger)
}

// OpenFile opens path for appending JSON log records.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type runIDKey struct{}

// WithRunID returns a context whose log records carry run_id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID stored by WithRunID.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok
}

type runHandler struct {
	slog.Handler
}

func (h *runHandler) Handle(ctx context.Context, record slog.Record) error {
	if id, ok := RunID(ctx); ok {
		record.Add("run_id", id)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}

func journalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
