package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a request-scoped logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the request-scoped logger, or zap.NewNop() if none is set.
func FromContext(ctx context.Context) *zap.Logger {
	return For(ctx, nil)
}

// For returns the request-scoped logger when one is set, otherwise fallback.
// Services pass their construction-time logger as fallback so calls made outside
// an HTTP request still log.
func For(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
