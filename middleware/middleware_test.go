package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/internal/testutil"
	"github.com/agentstation/dockflow/middleware"
)

func TestSlogLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	logger := middleware.NewSlogLogger(slog.New(handler).With("graph", "calc"))

	logger.Debug(ctx, "recomputing node", "node", "op")
	logger.Info(ctx, "loaded")
	logger.Error(ctx, "propagation failed", "node", "op")

	want := "level=INFO msg=loaded graph=calc\n" +
		"level=ERROR msg=\"propagation failed\" graph=calc node=op\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSlogLoggerDefault(t *testing.T) {
	if middleware.NewSlogLogger(nil) == nil {
		t.Fatal("NewSlogLogger(nil) returned nil")
	}
	var _ dockflow.Logger = middleware.NewSlogLogger(nil)
}

func TestTee(t *testing.T) {
	ctx := context.Background()
	a, b := testutil.NewMockLogger(), testutil.NewMockLogger()
	logger := middleware.Tee(a, b)

	logger.Debug(ctx, "one")
	logger.Info(ctx, "two")
	logger.Error(ctx, "three", "k", 1)

	for _, l := range []*testutil.MockLogger{a, b} {
		if len(l.Entries()) != 3 || l.Count("error", "three") != 1 {
			t.Errorf("entries = %v", l.Entries())
		}
	}
}

func TestChain(t *testing.T) {
	a, b := testutil.NewMockTracer(), testutil.NewMockTracer()
	tracer := middleware.Chain(a, b)

	_, end := tracer.StartSpan(context.Background(), "wave")
	if a.Open() != 1 || b.Open() != 1 {
		t.Fatalf("open spans = %d, %d", a.Open(), b.Open())
	}
	end()
	if a.Open() != 0 || b.Open() != 0 {
		t.Errorf("spans left open: %d, %d", a.Open(), b.Open())
	}
}

func TestTiming(t *testing.T) {
	ctx := context.Background()
	timing := middleware.NewTiming()

	for range 3 {
		_, end := timing.StartSpan(ctx, "b")
		end()
	}
	_, end := timing.StartSpan(ctx, "a")
	end()

	s, ok := timing.Stats("b")
	if !ok || s.Count != 3 {
		t.Fatalf("Stats(b) = %+v, %v", s, ok)
	}
	if s.Max < s.Last || s.Total < s.Max || s.Avg() > s.Max {
		t.Errorf("inconsistent stats %+v", s)
	}

	snap := timing.Snapshot()
	if len(snap) != 2 || snap[0].Name != "a" || snap[1].Name != "b" {
		t.Errorf("Snapshot() = %+v", snap)
	}

	timing.Reset()
	if _, ok := timing.Stats("b"); ok {
		t.Error("Reset() should forget spans")
	}
	if (middleware.SpanStats{}).Avg() != 0 {
		t.Error("empty stats should average to zero")
	}
}

func TestTimingGraph(t *testing.T) {
	ctx := context.Background()
	timing := middleware.NewTiming()
	g := dockflow.NewGraph("timed", dockflow.WithTracer(timing))

	a := testutil.NewConstant(t, "a", 1.0)
	probe := testutil.NewProbe(t, "probe")
	testutil.Wire(t, g, []dockflow.Element{a, probe}, [2]string{"a.output", "probe.input"})

	out, _ := a.Source("output")
	for i := range 4 {
		if err := out.Set(ctx, float64(i)); err != nil {
			t.Fatal(err)
		}
	}

	waves, _ := timing.Stats("dockflow.propagate")
	computes, _ := timing.Stats("dockflow.compute/probe")
	if waves.Count != 5 || computes.Count != 5 {
		t.Errorf("waves = %d, computes = %d, want 5 each", waves.Count, computes.Count)
	}
	if !strings.HasPrefix(timing.Snapshot()[0].Name, "dockflow.") {
		t.Errorf("unexpected span names %+v", timing.Snapshot())
	}
}
