package logger

import (
	"fmt"
	"log/slog"
	"os"
)

type Logger struct {
	slog     *slog.Logger
	scope    string
	file     string
	function string
}

func New(scope string) Logger {
	return Logger{
		slog:  slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		scope: scope,
	}
}

func (l Logger) Function(name string) Logger {
	l.function = name
	return l
}

func (l Logger) File(name string) Logger {
	l.file = name
	return l
}

func (l Logger) attrs(args ...any) []any {
	out := []any{"scope", l.scope}
	if l.file != "" {
		out = append(out, "file", l.file)
	}
	if l.function != "" {
		out = append(out, "function", l.function)
	}
	return append(out, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, l.attrs(args...)...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, l.attrs(args...)...)
}

func (l Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, l.attrs(args...)...)
}

// Err logs the error and returns it wrapped with the message, so call
// sites can do `return log.Err(...)`.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.slog.Error(msg, l.attrs(append(args, "error", err)...)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Er logs an error without returning one, for best-effort paths.
func (l Logger) Er(msg string, err error, args ...any) {
	l.slog.Error(msg, l.attrs(append(args, "error", err)...)...)
}

// Error logs and returns a new error built from the message.
func (l Logger) Error(msg string, args ...any) error {
	l.slog.Error(msg, l.attrs(args...)...)
	return fmt.Errorf("%s", msg)
}

func (l Logger) ErrMsg(msg string) error {
	l.slog.Error(msg, l.attrs()...)
	return fmt.Errorf("%s", msg)
}

func (l Logger) ErMsg(msg string) {
	l.slog.Error(msg, l.attrs()...)
}
