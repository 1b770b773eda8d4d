// Package testutil provides testing utilities for dockflow.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// LogEntry records one logger call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// MockLogger records log calls for inspection.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Debug records a debug message.
func (l *MockLogger) Debug(ctx context.Context, msg string, keysAndValues ...any) {
	l.record("debug", msg, keysAndValues)
}

// Info records an info message.
func (l *MockLogger) Info(ctx context.Context, msg string, keysAndValues ...any) {
	l.record("info", msg, keysAndValues)
}

// Error records an error message.
func (l *MockLogger) Error(ctx context.Context, msg string, keysAndValues ...any) {
	l.record("error", msg, keysAndValues)
}

func (l *MockLogger) record(level, msg string, keysAndValues []any) {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a copy of the recorded entries.
func (l *MockLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Count returns how many entries have the given level and message.
func (l *MockLogger) Count(level, msg string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level && e.Message == msg {
			n++
		}
	}
	return n
}

// String renders the entries one per line.
func (l *MockLogger) String() string {
	var b strings.Builder
	for _, e := range l.Entries() {
		fmt.Fprintf(&b, "%s %s %v\n", e.Level, e.Message, e.Fields)
	}
	return b.String()
}

// MockTracer records span names.
type MockTracer struct {
	mu    sync.Mutex
	spans []string
	open  int
}

// NewMockTracer creates a new mock tracer.
func NewMockTracer() *MockTracer {
	return &MockTracer{}
}

// StartSpan records the span and returns a function closing it.
func (t *MockTracer) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	t.mu.Lock()
	t.spans = append(t.spans, name)
	t.open++
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		t.open--
		t.mu.Unlock()
	}
}

// Spans returns the names of all started spans.
func (t *MockTracer) Spans() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.spans...)
}

// Open returns the number of spans not yet ended.
func (t *MockTracer) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// ErrorCollector gathers errors passed to a handler.
type ErrorCollector struct {
	mu   sync.Mutex
	errs []error
}

// Handle records err. Pass it to dockflow.WithErrorHandler or
// dockflow.WithOnError.
func (c *ErrorCollector) Handle(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns the collected errors.
func (c *ErrorCollector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}
