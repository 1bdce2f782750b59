package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	traceKey
)

// Field names shared by every request scoped log line.
const (
	FieldTraceID = "traceID"
	FieldUserID  = "userID"
	FieldRole    = "role"
)

// With stores a logger carrying fields in ctx. Later calls add to the fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// WithTrace tags every later log line with the request trace id and keeps the
// id itself reachable through TraceID.
func WithTrace(ctx context.Context, traceID string) context.Context {
	ctx = context.WithValue(ctx, traceKey, traceID)
	return With(ctx, FieldTraceID, traceID)
}

func WithCaller(ctx context.Context, userID, role string) context.Context {
	return With(ctx, FieldUserID, userID, FieldRole, role)
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey).(string)
	return id
}

// From returns the logger stored in ctx, or the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return LoggerWrapper()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
