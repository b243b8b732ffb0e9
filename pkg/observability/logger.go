package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Record attribute keys.
const (
	LogKeyTraceID  = "trace_id"
	LogKeySpanID   = "span_id"
	LogKeyService  = "service"
	LogKeyEnv      = "env"
	LogKeyMode     = "mode"
	LogKeySentence = "sentence"
)

type sentenceKey struct{}

// ContextWithSentence tags ctx with the id of the sentence being processed.
// Records logged with the returned context carry it under "sentence".
func ContextWithSentence(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sentenceKey{}, id)
}

// SentenceFromContext returns the sentence id set by ContextWithSentence.
func SentenceFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sentenceKey{}).(string)

	return id, ok
}

// TracingHandler is an [slog.Handler] that stamps each record with the active
// span ids and the sentence id found on the context. Service, env and mode are
// fixed at construction so they stay top level under WithGroup.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner. An empty env is omitted; an empty mode is
// recorded as "cli".
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	if appMode == "" {
		appMode = ModeCLI
	}

	attrs := make([]slog.Attr, 0, 3) //nolint:mnd // service, mode, env.
	attrs = append(attrs, slog.String(LogKeyService, service), slog.String(LogKeyMode, string(appMode)))

	if env != "" {
		attrs = append(attrs, slog.String(LogKeyEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled reports whether the inner handler takes level.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle stamps record, then passes it on.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String(LogKeyTraceID, spanCtx.TraceID().String()),
			slog.String(LogKeySpanID, spanCtx.SpanID().String()),
		)
	}

	if id, ok := SentenceFromContext(ctx); ok {
		record.AddAttrs(slog.String(LogKeySentence, id))
	}

	handleErr := th.inner.Handle(ctx, record)
	if handleErr != nil {
		return fmt.Errorf("tracing handler: %w", handleErr)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}
