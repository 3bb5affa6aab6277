// Package log supports leveled logging with request-scoped context.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// requestIDKey is the type of the context key for request IDs.
type requestIDKey struct{}

// NewContextWithRequestID creates a new context from ctx that adds the request ID.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// SetOutput redirects log output to w.  It is meant for tests and for
// commands that want plain stderr output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// SetLevel sets the minimum level that is logged.  It accepts "debug",
// "info", "warning" (or "warn") and "error", in any case.
func SetLevel(v string) error {
	switch strings.ToLower(v) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info", "":
		level.Set(slog.LevelInfo)
	case "warning", "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", v)
	}
	return nil
}

// Debugf logs a formatted string at the Debug level.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, slog.LevelDebug, format, args)
}

// Infof logs a formatted string at the Info level.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, slog.LevelInfo, format, args)
}

// Warningf logs a formatted string at the Warning level.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, slog.LevelWarn, format, args)
}

// Errorf logs a formatted string at the Error level.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, slog.LevelError, format, args)
}

// Fatalf is equivalent to Errorf followed by exiting the program.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	Errorf(ctx, format, args...)
	os.Exit(1)
}

func logf(ctx context.Context, l slog.Level, format string, args []interface{}) {
	mu.Lock()
	lg := logger
	mu.Unlock()
	if !lg.Enabled(ctx, l) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if id := RequestID(ctx); id != "" {
		lg.Log(ctx, l, msg, slog.String("request_id", id))
		return
	}
	lg.Log(ctx, l, msg)
}
