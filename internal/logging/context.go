package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	contractKey ctxKey = iota
	functionKey
	requestIDKey
)

// WithContract returns a context with the contract name set.
func WithContract(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contractKey, name)
}

// WithFunction returns a context with the ABI function name set.
func WithFunction(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, functionKey, name)
}

// WithRequestID returns a context with the request ID set.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Contract extracts the contract name from the context, or "" if absent.
func Contract(ctx context.Context) string {
	v, _ := ctx.Value(contractKey).(string)
	return v
}

// Function extracts the ABI function name from the context, or "" if absent.
func Function(ctx context.Context) string {
	v, _ := ctx.Value(functionKey).(string)
	return v
}

// RequestID extracts the request ID from the context, or "" if absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation IDs from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and IDs appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := Contract(ctx); v != "" {
		r.AddAttrs(slog.String("contract", v))
	}
	if v := Function(ctx); v != "" {
		r.AddAttrs(slog.String("function", v))
	}
	if v := RequestID(ctx); v != "" {
		r.AddAttrs(slog.String("request_id", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
