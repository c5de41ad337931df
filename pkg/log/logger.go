package log

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

const (
	// ErrAttrKey is the attribute key the slog backend inspects for errors.
	ErrAttrKey = "error"
	// StacktraceAttrKey carries the stacktrace extracted from a logged error.
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for slog so the stacktrace handler can find it.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// Level. Unknown names are rejected so flag typos fail loudly.
func ParseLevel(name string) (Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("unknown log level %q", name)
	}
}

// SlogProvider is a LoggerProvider backed by the standard library's log/slog
// with JSON output. Errors logged in leading position get a stacktrace
// attribute attached (see handler.go). Level values are slog-compatible, so
// the minimum level maps through unchanged.
type SlogProvider struct {
	logger   *slog.Logger
	levelVar *slog.LevelVar
}

// NewSlogProvider creates a provider writing JSON records to stderr.
func NewSlogProvider(level Level) *SlogProvider {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(level))
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})
	return &SlogProvider{
		logger:   slog.New(WithStacktraces(handler)),
		levelVar: levelVar,
	}
}

// NewSlogProviderWithHandler wraps an existing handler. Useful in tests to
// capture output in a buffer. SetLevel has no effect on a wrapped handler;
// the handler's own level applies.
func NewSlogProviderWithHandler(handler slog.Handler) *SlogProvider {
	return &SlogProvider{
		logger:   slog.New(WithStacktraces(handler)),
		levelVar: new(slog.LevelVar),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{logger: p.logger}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{logger: p.logger.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *SlogProvider) SetLevel(level Level) {
	p.levelVar.Set(slog.Level(level))
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) {
	s.logger.Debug(msg, fields...)
}

func (s *slogLogger) Info(msg string, fields ...any) {
	s.logger.Info(msg, fields...)
}

func (s *slogLogger) Warn(msg string, fields ...any) {
	s.logger.Warn(msg, fields...)
}

func (s *slogLogger) Error(msg string, fields ...any) {
	// An error in leading position becomes the structured error attribute,
	// which the stacktrace handler expands.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			args := append([]any{ErrAttr(err)}, fields[1:]...)
			s.logger.Error(msg, args...)
			return
		}
	}
	s.logger.Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: s.logger.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}
