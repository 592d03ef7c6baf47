// Package logging wraps log/slog with context-carried attributes.
// Components annotate a context once (WithComponent, WithSession) and every
// log call on that context includes the attributes automatically.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type contextKey string

const (
	componentKey contextKey = "component"
	sessionKey   contextKey = "session"
	agentKey     contextKey = "agent"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// Setup replaces the process logger with one at the given level.
// Level strings match settings: debug, info, warn, error. The
// SCHALTWERK_LOG_LEVEL environment variable overrides the argument.
func Setup(level string) {
	if env := os.Getenv("SCHALTWERK_LOG_LEVEL"); env != "" {
		level = env
	}
	logger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})))
}

// SetLogger replaces the process logger. Intended for tests.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// WithComponent annotates the context with the component name.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithSession annotates the context with a session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// WithAgent annotates the context with an agent name.
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, agentKey, agent)
}

func contextAttrs(ctx context.Context) []any {
	var attrs []any
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		attrs = append(attrs, slog.String("component", v))
	}
	if v, ok := ctx.Value(sessionKey).(string); ok && v != "" {
		attrs = append(attrs, slog.String("session_id", v))
	}
	if v, ok := ctx.Value(agentKey).(string); ok && v != "" {
		attrs = append(attrs, slog.String("agent", v))
	}
	return attrs
}

// Debug logs at debug level with context attributes.
func Debug(ctx context.Context, msg string, args ...any) {
	logger.Load().Debug(msg, append(contextAttrs(ctx), args...)...)
}

// Info logs at info level with context attributes.
func Info(ctx context.Context, msg string, args ...any) {
	logger.Load().Info(msg, append(contextAttrs(ctx), args...)...)
}

// Warn logs at warn level with context attributes.
func Warn(ctx context.Context, msg string, args ...any) {
	logger.Load().Warn(msg, append(contextAttrs(ctx), args...)...)
}

// Error logs at error level with context attributes.
func Error(ctx context.Context, msg string, args ...any) {
	logger.Load().Error(msg, append(contextAttrs(ctx), args...)...)
}
