package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// New returns the process logger writing to stdout.
func New(appEnv string) *slog.Logger {
	return NewWithWriter(appEnv, os.Stdout)
}

// NewWithWriter emits JSON everywhere except local, where a text handler is easier to read.
// Every line carries service and env.
func NewWithWriter(appEnv string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if appEnv == "local" || appEnv == "dev" {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if appEnv == "local" {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", "classroom-api", "env", appEnv)
}

type ctxKey struct{}

func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From returns the request logger, or slog.Default outside a request.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
