// Package tracing provides a minimal span abstraction for timing named
// operations, with a [LoggingTracer] implementation that reports finished
// spans through [log/slog].
package tracing

// Tracer starts spans for named operations.
type Tracer interface {
	StartSpan(operationName string) Span
}

// Span is one timed operation. The duration between [Tracer.StartSpan] and
// Finish is reported along with any attached baggage.
type Span interface {
	// Finish completes the span and reports it.
	Finish()

	// SetBaggageItem attaches a key/value pair to the span.
	SetBaggageItem(key string, value any)
}
