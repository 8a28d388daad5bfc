package sqlengine

import (
	"context"
	"time"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
// It is satisfied by *slog.Logger and by zerologadapter.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting catalog performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
// The Engine uses them when the configured collector implements them.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting tracing information from catalog operations.
// Like MetricsCollector it has no dependencies, any tracing backend can be plugged in by implementing it.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger interface for context-aware logging, e.g. with trace correlation.
// It is satisfied by *slog.Logger.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithAuthorsTableName sets the name of the authors table.
func WithAuthorsTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return catalog.ErrEmptyTableName
		}

		e.authorsTableName = tableName

		return nil
	}
}

// WithBooksTableName sets the name of the books table.
func WithBooksTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return catalog.ErrEmptyTableName
		}

		e.booksTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Row counts, durations, constraint violations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// Every operation records its duration; selects also record the number of rows,
// failures increment an error or constraint violation counter.
func WithMetrics(collector MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine, which then opens one span per operation.
func WithTracing(collector TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for the Engine.
// It receives the same messages as the Logger, together with the operation's context.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}
