package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/bookcatalog/catalog/sqlengine"
)

// SpySpanContext is the SpanContext handed out by TracingCollectorSpy.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements the SpanContext interface for testing.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

// AddAttribute implements the SpanContext interface for testing.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// GetStatus returns the status the engine set on the span.
func (c *SpySpanContext) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// GetAttributes returns a copy of the attributes the engine added to the span.
func (c *SpySpanContext) GetAttributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return copyAttrs(c.attributes)
}

// TracingCollectorSpy is a TracingCollector implementation that captures spans for testing.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpySpanRecord represents a started, and possibly finished, span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Finished        bool
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpySpanContext
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
// Set recordCalls to true to capture all tracing calls for inspection in tests.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{
		spanRecords: make([]SpySpanRecord, 0),
		recordCalls: recordCalls,
	}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, sqlengine.SpanContext) {
	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{attributes: make(map[string]string)}

	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: copyAttrs(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(spanCtx sqlengine.SpanContext, status string, attrs map[string]string) {
	if !s.recordCalls || spanCtx == nil {
		return
	}

	spySpanCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == spySpanCtx {
			s.spanRecords[i].Finished = true
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = copyAttrs(attrs)

			break
		}
	}
}

// GetSpanRecordCount returns the number of captured spans.
func (s *TracingCollectorSpy) GetSpanRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.spanRecords)
}

// GetSpanRecords returns a copy of all captured spans.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.spanRecords...)
}

// CountUnfinishedSpans returns the number of spans that were started but never finished.
func (s *TracingCollectorSpy) CountUnfinishedSpans() int {
	count := 0
	for _, record := range s.GetSpanRecords() {
		if !record.Finished {
			count++
		}
	}

	return count
}

// Reset clears all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spanRecords = s.spanRecords[:0]
}

// SpanRecordMatcher provides a fluent interface for checking span records.
// Assert succeeds if at least one span satisfies all conditions of the chain.
type SpanRecordMatcher struct {
	collector  *TracingCollectorSpy
	conditions []func(SpySpanRecord) bool
}

// HasSpanRecordForName starts a fluent chain to check a span record.
func (s *TracingCollectorSpy) HasSpanRecordForName(name string) *SpanRecordMatcher {
	return &SpanRecordMatcher{
		collector: s,
		conditions: []func(SpySpanRecord) bool{
			func(r SpySpanRecord) bool { return r.Name == name },
		},
	}
}

// WithStatus requires the status the span was finished with.
func (m *SpanRecordMatcher) WithStatus(status string) *SpanRecordMatcher {
	m.conditions = append(m.conditions, func(r SpySpanRecord) bool {
		return r.Finished && r.Status == status
	})

	return m
}

// WithStartAttribute requires an attribute passed when the span was started.
func (m *SpanRecordMatcher) WithStartAttribute(key, value string) *SpanRecordMatcher {
	m.conditions = append(m.conditions, func(r SpySpanRecord) bool {
		attrValue, exists := r.StartAttributes[key]
		return exists && attrValue == value
	})

	return m
}

// WithEndAttribute requires an attribute passed when the span was finished.
func (m *SpanRecordMatcher) WithEndAttribute(key, value string) *SpanRecordMatcher {
	m.conditions = append(m.conditions, func(r SpySpanRecord) bool {
		attrValue, exists := r.EndAttributes[key]
		return exists && attrValue == value
	})

	return m
}

// WithSpanAttribute requires an attribute added to the span context.
func (m *SpanRecordMatcher) WithSpanAttribute(key string) *SpanRecordMatcher {
	m.conditions = append(m.conditions, func(r SpySpanRecord) bool {
		if r.SpanContext == nil {
			return false
		}

		_, exists := r.SpanContext.GetAttributes()[key]
		return exists
	})

	return m
}

// Assert returns true if a span satisfies all conditions in the fluent chain.
func (m *SpanRecordMatcher) Assert() bool {
	for _, record := range m.collector.GetSpanRecords() {
		if m.matches(record) {
			return true
		}
	}

	return false
}

func (m *SpanRecordMatcher) matches(record SpySpanRecord) bool {
	for _, condition := range m.conditions {
		if !condition(record) {
			return false
		}
	}

	return true
}

func copyAttrs(attrs map[string]string) map[string]string {
	attrsCopy := make(map[string]string, len(attrs))
	for k, v := range attrs {
		attrsCopy[k] = v
	}

	return attrsCopy
}

// Compile-time check to ensure TracingCollectorSpy implements the TracingCollector interface.
var _ sqlengine.TracingCollector = (*TracingCollectorSpy)(nil)
