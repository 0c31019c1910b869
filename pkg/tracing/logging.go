package tracing

import (
	"context"
	"log/slog"
	"time"
)

var (
	_ Tracer = LoggingTracer{}
	_ Span   = loggingSpan{}
)

// LoggingTracer reports finished spans at debug level on a [slog.Logger].
type LoggingTracer struct {
	logger *slog.Logger
}

// NewLoggingTracer creates a [LoggingTracer] reporting via logger.
func NewLoggingTracer(logger *slog.Logger) *LoggingTracer {
	return &LoggingTracer{
		logger: logger,
	}
}

//nolint:ireturn
func (l LoggingTracer) StartSpan(operationName string) Span {
	return loggingSpan{
		logger:        l.logger,
		operationName: operationName,
		baggage:       map[string]any{},
		start:         time.Now(),
	}
}

type loggingSpan struct {
	start         time.Time
	logger        *slog.Logger
	baggage       map[string]any
	operationName string
}

func (s loggingSpan) Finish() {
	attrs := make([]any, 0, len(s.baggage)*2+4)
	for k, v := range s.baggage {
		attrs = append(attrs, k, v)
	}

	attrs = append(attrs,
		"operation_name", s.operationName,
		"time_ms", time.Since(s.start).Seconds()*1e3,
	)

	s.logger.Log(context.Background(), slog.LevelDebug, "trace", attrs...)
}

func (s loggingSpan) SetBaggageItem(key string, value any) {
	s.baggage[key] = value
}
