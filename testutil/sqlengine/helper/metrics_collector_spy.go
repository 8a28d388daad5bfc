package helper

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
)

const (
	metricKindDuration = "duration"
	metricKindCounter  = "counter"
	metricKindValue    = "value"
)

// MetricsCollectorSpy is a MetricsCollector implementation that captures metrics calls for testing.
type MetricsCollectorSpy struct {
	records     []SpyMetricRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpyMetricRecord represents one recorded duration, counter, or value call.
type SpyMetricRecord struct {
	Kind     string
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture all metrics calls for inspection in tests.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{
		records:     make([]SpyMetricRecord, 0),
		recordCalls: recordCalls,
	}
}

// RecordDuration implements the MetricsCollector interface for testing.
func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: metricKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

// IncrementCounter implements the MetricsCollector interface for testing.
func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: metricKindCounter, Metric: metric, Labels: labels})
}

// RecordValue implements the MetricsCollector interface for testing.
func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: metricKindValue, Metric: metric, Value: value, Labels: labels})
}

// SupportsContextual reports whether the spy implements sqlengine.ContextualMetricsCollector.
func (s *MetricsCollectorSpy) SupportsContextual() bool {
	return false
}

func (s *MetricsCollectorSpy) record(record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// copy the labels to avoid external modifications
	labelsCopy := make(map[string]string, len(record.Labels))
	for k, v := range record.Labels {
		labelsCopy[k] = v
	}
	record.Labels = labelsCopy

	s.records = append(s.records, record)
}

// GetRecords returns a copy of all captured records.
func (s *MetricsCollectorSpy) GetRecords() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.records...)
}

// GetRecordCount returns the number of captured records.
func (s *MetricsCollectorSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Reset clears all captured records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// CountRecordsForMetric counts the records of any kind with the given metric name.
func (s *MetricsCollectorSpy) CountRecordsForMetric(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// MetricRecordMatcher provides a fluent interface for checking metric records.
// Assert succeeds if at least one record satisfies all conditions of the chain.
type MetricRecordMatcher struct {
	collector  *MetricsCollectorSpy
	conditions []func(SpyMetricRecord) bool
}

// HasDurationRecordForMetric starts a fluent chain to check a duration record.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return s.newMatcher(metricKindDuration, metric)
}

// HasCounterRecordForMetric starts a fluent chain to check a counter record.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return s.newMatcher(metricKindCounter, metric)
}

// HasValueRecordForMetric starts a fluent chain to check a value record.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	return s.newMatcher(metricKindValue, metric)
}

func (s *MetricsCollectorSpy) newMatcher(kind, metric string) *MetricRecordMatcher {
	return &MetricRecordMatcher{
		collector: s,
		conditions: []func(SpyMetricRecord) bool{
			func(r SpyMetricRecord) bool { return r.Kind == kind && r.Metric == metric },
		},
	}
}

// WithOperation requires the "operation" label.
func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

// WithStatus requires the "status" label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithErrorType requires the "error_type" label.
func (m *MetricRecordMatcher) WithErrorType(errorType string) *MetricRecordMatcher {
	return m.WithLabel("error_type", errorType)
}

// WithLabel requires a label with the given value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	m.conditions = append(m.conditions, func(r SpyMetricRecord) bool {
		labelValue, exists := r.Labels[key]
		return exists && labelValue == value
	})

	return m
}

// WithValue requires the recorded value, only meaningful for value records.
func (m *MetricRecordMatcher) WithValue(value float64) *MetricRecordMatcher {
	m.conditions = append(m.conditions, func(r SpyMetricRecord) bool {
		return r.Value == value
	})

	return m
}

// Assert returns true if a record satisfies all conditions in the fluent chain.
func (m *MetricRecordMatcher) Assert() bool {
	for _, record := range m.collector.GetRecords() {
		if m.matches(record) {
			return true
		}
	}

	return false
}

func (m *MetricRecordMatcher) matches(record SpyMetricRecord) bool {
	for _, condition := range m.conditions {
		if !condition(record) {
			return false
		}
	}

	return true
}

// ContextualMetricsCollectorSpy is a MetricsCollectorSpy that also implements the context-aware methods.
type ContextualMetricsCollectorSpy struct {
	*MetricsCollectorSpy
	contextualCalls int
	ctxMu           sync.Mutex
}

// NewContextualMetricsCollectorSpy creates a new ContextualMetricsCollectorSpy.
func NewContextualMetricsCollectorSpy(recordCalls bool) *ContextualMetricsCollectorSpy {
	return &ContextualMetricsCollectorSpy{MetricsCollectorSpy: NewMetricsCollectorSpy(recordCalls)}
}

// RecordDurationContext implements the ContextualMetricsCollector interface for testing.
func (s *ContextualMetricsCollectorSpy) RecordDurationContext(
	_ context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.countContextualCall()
	s.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext implements the ContextualMetricsCollector interface for testing.
func (s *ContextualMetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.countContextualCall()
	s.IncrementCounter(metric, labels)
}

// RecordValueContext implements the ContextualMetricsCollector interface for testing.
func (s *ContextualMetricsCollectorSpy) RecordValueContext(
	_ context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.countContextualCall()
	s.RecordValue(metric, value, labels)
}

// SupportsContextual reports whether the spy implements sqlengine.ContextualMetricsCollector.
func (s *ContextualMetricsCollectorSpy) SupportsContextual() bool {
	return true
}

// GetContextualCallCount returns how many calls went through the context-aware methods.
func (s *ContextualMetricsCollectorSpy) GetContextualCallCount() int {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()

	return s.contextualCalls
}

func (s *ContextualMetricsCollectorSpy) countContextualCall() {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()

	s.contextualCalls++
}

// Compile-time checks for the collector interfaces.
var (
	_ sqlengine.MetricsCollector           = (*MetricsCollectorSpy)(nil)
	_ sqlengine.ContextualMetricsCollector = (*ContextualMetricsCollectorSpy)(nil)
)
