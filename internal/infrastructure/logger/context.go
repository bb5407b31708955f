package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey uint8

const (
	loggerKey ctxKey = iota + 1
	requestIDKey
	userKey
)

// WithContext stores l as the request-scoped logger
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Stored returns the request-scoped logger, if one was attached
func Stored(ctx context.Context) (*zap.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	return l, ok && l != nil
}

// FromContext returns the request-scoped logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := Stored(ctx); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID and stores a logger tagged with it
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	tagged := l.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithContext(ctx, tagged), tagged
}

// WithUserID records the signed-in admin and stores a logger tagged with it
func WithUserID(ctx context.Context, l *zap.Logger, user string) (context.Context, *zap.Logger) {
	tagged := l.With(zap.String("user_id", user))
	ctx = context.WithValue(ctx, userKey, user)
	return WithContext(ctx, tagged), tagged
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func GetUserID(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// GetTraceID returns the active trace ID or ""
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// L returns the request-scoped logger with trace_id and span_id attached
// when a span is active. Usage: logger.L(ctx).Warn("thumbnail skipped").
func L(ctx context.Context) *zap.Logger {
	l, ok := Stored(ctx)
	if !ok {
		return For(ctx, nil)
	}
	return withSpan(ctx, l)
}

// For decorates l with whatever request, user and trace identifiers ctx
// carries. Loggers already stored by WithRequestID are tagged, so use L
// for those.
func For(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if id := GetRequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if user := GetUserID(ctx); user != "" {
		l = l.With(zap.String("user_id", user))
	}
	return withSpan(ctx, l)
}

func withSpan(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
