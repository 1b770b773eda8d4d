package middleware

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SpanStats summarizes every span started under one name.
type SpanStats struct {
	Name  string        `json:"name" yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Total time.Duration `json:"total" yaml:"total"`
	Last  time.Duration `json:"last" yaml:"last"`
	Max   time.Duration `json:"max" yaml:"max"`
}

// Avg returns the mean span duration.
func (s SpanStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Timing is a tracer that measures how long spans take. Graphs open one
// span per propagation wave and one per node recompute.
type Timing struct {
	mu    sync.Mutex
	stats map[string]*SpanStats
	now   func() time.Time
}

// NewTiming creates an empty timing tracer.
func NewTiming() *Timing {
	return &Timing{
		stats: make(map[string]*SpanStats),
		now:   time.Now,
	}
}

// StartSpan starts timing name. The returned function stops it.
func (t *Timing) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	start := t.now()
	return ctx, func() {
		d := t.now().Sub(start)

		t.mu.Lock()
		defer t.mu.Unlock()
		s, ok := t.stats[name]
		if !ok {
			s = &SpanStats{Name: name}
			t.stats[name] = s
		}
		s.Count++
		s.Total += d
		s.Last = d
		if d > s.Max {
			s.Max = d
		}
	}
}

// Stats returns the statistics of one span name.
func (t *Timing) Stats(name string) (SpanStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.stats[name]
	if !ok {
		return SpanStats{}, false
	}
	return *s, true
}

// Snapshot returns the statistics of every span name, sorted by name.
func (t *Timing) Snapshot() []SpanStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SpanStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset forgets all recorded spans.
func (t *Timing) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]*SpanStats)
}
