package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/bookcatalog/catalog"
)

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (e *Engine) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (e *Engine) logOperation(ctx context.Context, action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarning logs non-critical issues at warn level if a logger is configured.
func (e *Engine) logWarning(ctx context.Context, message string, err error) {
	if e.logger != nil {
		e.logger.Warn(message, logAttrError, err.Error())
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level if a logger is configured.
func (e *Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (e *Engine) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDuration records a duration metric, context-aware if the collector supports it.
func (e *Engine) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric, context-aware if the collector supports it.
func (e *Engine) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metric, labels)
}

// recordValue records a value metric, context-aware if the collector supports it.
func (e *Engine) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	e.metricsCollector.RecordValue(metric, value, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (e *Engine) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if e.tracingCollector != nil {
		return e.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (e *Engine) finishTraceSpan(spanCtx SpanContext, status string, attrs map[string]string) {
	if e.tracingCollector != nil && spanCtx != nil {
		e.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// errorTypeOf classifies a failed operation for the error_type label and span attribute.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorTypeCanceled
	case errors.Is(err, catalog.ErrPreparingStmtFailed):
		return errorTypePrepareStatement
	case errors.Is(err, catalog.ErrBeginningTxFailed):
		return errorTypeBeginTx
	case errors.Is(err, catalog.ErrCommittingTxFailed):
		return errorTypeCommitTx
	case errors.Is(err, catalog.ErrScanningDBRowFailed):
		return errorTypeScanRow
	case errors.Is(err, catalog.ErrInvalidID):
		return errorTypeInvalidID
	default:
		return errorTypeDatabase
	}
}

// === Operation Observer Pattern ===
// One observer per Engine operation keeps the span and the metrics of that operation together.

// operationObserver finishes the tracing span and records the metrics of one operation.
type operationObserver struct {
	e         *Engine
	ctx       context.Context
	operation string
	span      SpanContext
}

// observe starts the span of an operation. The returned context carries the span, if any.
func (e *Engine) observe(ctx context.Context, operation string, attrs map[string]string) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{spanAttrOperation: operation}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	newCtx, span := e.startTraceSpan(ctx, spanNamePrefix+operation, spanAttrs)

	return &operationObserver{e: e, ctx: newCtx, operation: operation, span: span}, newCtx
}

func (o *operationObserver) labels(status string) map[string]string {
	return map[string]string{
		spanAttrOperation: o.operation,
		metricLabelStatus: status,
	}
}

// finishSuccess records the duration of a successful operation and closes its span with attrs.
func (o *operationObserver) finishSuccess(duration time.Duration, attrs map[string]string) {
	o.e.recordDuration(o.ctx, metricOperationDuration, duration, o.labels(statusSuccess))

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrDurationMS, formatDuration(duration))
		for key, value := range attrs {
			o.span.AddAttribute(key, value)
		}
	}

	o.e.finishTraceSpan(o.span, statusSuccess, attrs)
}

// finishSelected is finishSuccess for selects, which also report how many rows they returned.
func (o *operationObserver) finishSelected(metric string, countAttr string, count int, duration time.Duration) {
	o.e.recordValue(o.ctx, metric, float64(count), o.labels(statusSuccess))
	o.finishSuccess(duration, map[string]string{countAttr: fmt.Sprintf("%d", count)})
}

// finishInserted is finishSuccess for inserts, which also count the stored rows.
func (o *operationObserver) finishInserted(metric string, duration time.Duration) {
	o.e.incrementCounter(o.ctx, metric, o.labels(statusSuccess))
	o.finishSuccess(duration, nil)
}

// finishError records a failed operation and closes its span with the error type.
func (o *operationObserver) finishError(err error, duration time.Duration) {
	errorType := errorTypeOf(err)
	errorLabels := o.labels(statusError)
	errorLabels[spanAttrErrorType] = errorType

	o.e.recordDuration(o.ctx, metricOperationDuration, duration, o.labels(statusError))
	o.e.incrementCounter(o.ctx, metricDatabaseErrors, errorLabels)
	o.finishSpanError(errorType, duration)
}

// finishConstraintViolation records a write that the database rejected because of a constraint.
func (o *operationObserver) finishConstraintViolation(duration time.Duration) {
	violationLabels := o.labels(statusError)
	violationLabels[spanAttrErrorType] = errorTypeConstraintViolation

	o.e.recordDuration(o.ctx, metricOperationDuration, duration, o.labels(statusError))
	o.e.incrementCounter(o.ctx, metricConstraintViolations, violationLabels)
	o.finishSpanError(errorTypeConstraintViolation, duration)
}

func (o *operationObserver) finishSpanError(errorType string, duration time.Duration) {
	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)

		if duration > 0 {
			o.span.AddAttribute(spanAttrDurationMS, formatDuration(duration))
		}
	}

	o.e.finishTraceSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6)
}
