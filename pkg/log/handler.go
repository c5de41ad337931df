package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// stacktraceHandler decorates records carrying an error under ErrAttrKey
// with the stacktrace recorded by cockroachdb/errors.
type stacktraceHandler struct {
	next slog.Handler
}

// WithStacktraces wraps a slog handler so logged errors come out with their
// stacktrace as a separate attribute.
func WithStacktraces(next slog.Handler) slog.Handler {
	return &stacktraceHandler{next: next}
}

func (h *stacktraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *stacktraceHandler) Handle(ctx context.Context, record slog.Record) error {
	var logged error
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		logged, _ = attr.Value.Any().(error)
		return false
	})
	if logged != nil {
		if details := errors.GetSafeDetails(logged).SafeDetails; len(details) > 0 {
			record.AddAttrs(slog.String(StacktraceAttrKey, details[0]))
		}
	}
	return h.next.Handle(ctx, record)
}

func (h *stacktraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stacktraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *stacktraceHandler) WithGroup(name string) slog.Handler {
	return &stacktraceHandler{next: h.next.WithGroup(name)}
}
