package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	operationKey ctxKey = iota
	jobPathKey
	accountKey
)

// WithOperation returns a context with the tool operation name set.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey, name)
}

// WithJobPath returns a context with the Jenkins job path set.
func WithJobPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, jobPathKey, path)
}

// WithAccount returns a context with the credential account name set.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// Operation extracts the operation name from the context, or "" if absent.
func Operation(ctx context.Context) string {
	v, _ := ctx.Value(operationKey).(string)
	return v
}

// JobPath extracts the job path from the context, or "" if absent.
func JobPath(ctx context.Context) string {
	v, _ := ctx.Value(jobPathKey).(string)
	return v
}

// Account extracts the account name from the context, or "" if absent.
func Account(ctx context.Context) string {
	v, _ := ctx.Value(accountKey).(string)
	return v
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation attributes from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and attributes appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := Operation(ctx); v != "" {
		r.AddAttrs(slog.String("operation", v))
	}
	if v := JobPath(ctx); v != "" {
		r.AddAttrs(slog.String("job", v))
	}
	if v := Account(ctx); v != "" {
		r.AddAttrs(slog.String("account", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
