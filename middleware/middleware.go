// Package middleware provides the loggers and tracers that graphs accept
// through dockflow.WithLogger and dockflow.WithTracer, and ways to combine
// them.
package middleware

import (
	"context"

	"github.com/agentstation/dockflow"
)

// Tee sends every message to all loggers.
func Tee(loggers ...dockflow.Logger) dockflow.Logger {
	return teeLogger(loggers)
}

type teeLogger []dockflow.Logger

func (t teeLogger) Debug(ctx context.Context, msg string, keysAndValues ...any) {
	for _, l := range t {
		l.Debug(ctx, msg, keysAndValues...)
	}
}

func (t teeLogger) Info(ctx context.Context, msg string, keysAndValues ...any) {
	for _, l := range t {
		l.Info(ctx, msg, keysAndValues...)
	}
}

func (t teeLogger) Error(ctx context.Context, msg string, keysAndValues ...any) {
	for _, l := range t {
		l.Error(ctx, msg, keysAndValues...)
	}
}

// Chain starts a span in every tracer. Spans end in reverse order.
func Chain(tracers ...dockflow.Tracer) dockflow.Tracer {
	return chainTracer(tracers)
}

type chainTracer []dockflow.Tracer

func (c chainTracer) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	ends := make([]func(), 0, len(c))
	for _, t := range c {
		var end func()
		ctx, end = t.StartSpan(ctx, name)
		ends = append(ends, end)
	}
	return ctx, func() {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i]()
		}
	}
}
