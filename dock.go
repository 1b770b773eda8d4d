package dockflow

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

// dock holds the state shared by sources and sinks.
type dock struct {
	name string
	typ  reflect.Type
	node *Node
}

// Name returns the dock name.
func (d *dock) Name() string { return d.name }

// Type returns the declared value type, nil for polymorphic docks.
func (d *dock) Type() reflect.Type { return d.typ }

// Node returns the owning node, nil while the dock is unattached.
func (d *dock) Node() *Node { return d.node }

// Path returns "node.dock", or just the dock name when unattached.
func (d *dock) Path() string {
	if d.node == nil {
		return d.name
	}
	return d.node.name + "." + d.name
}

func (d *dock) graph() *Graph {
	if d.node == nil {
		return nil
	}
	return d.node.graph
}

// observers is a per-dock observer list with synchronous dispatch.
type observers[D any] struct {
	next  int
	funcs []observer[D]
}

type observer[D any] struct {
	id int
	fn func(context.Context, D)
}

func (o *observers[D]) add(fn func(context.Context, D)) func() {
	o.next++
	id := o.next
	o.funcs = append(o.funcs, observer[D]{id: id, fn: fn})
	return func() {
		o.funcs = slices.DeleteFunc(o.funcs, func(ob observer[D]) bool { return ob.id == id })
	}
}

func (o *observers[D]) notify(ctx context.Context, d D) {
	// Observers may unsubscribe while being notified.
	for _, ob := range slices.Clone(o.funcs) {
		ob.fn(ctx, d)
	}
}

// Source is an output dock. It holds the value computed by its node and
// feeds any number of connected sinks.
type Source struct {
	dock
	value    any
	valid    bool
	sinks    []*Sink
	maxSinks int
	changed  observers[*Source]
}

// NewSource creates an invalid source carrying values of type T.
// NewSource[any] creates a polymorphic source.
func NewSource[T any](name string) *Source {
	return NewSourceOf(name, TypeOf[T]())
}

// NewSourceOf creates an invalid source with an explicit value type.
func NewSourceOf(name string, t reflect.Type) *Source {
	if isAnyType(t) {
		t = nil
	}
	return &Source{dock: dock{name: name, typ: t}}
}

// Value returns the current value. The second result is false when the
// source has no value.
func (s *Source) Value() (any, bool) {
	if !s.valid {
		return nil, false
	}
	return s.value, true
}

// Valid reports whether the source currently holds a value.
func (s *Source) Valid() bool { return s.valid }

// Set stores v and propagates it to every connected sink. A nil v
// invalidates the source.
func (s *Source) Set(ctx context.Context, v any) error {
	if v == nil {
		return s.Invalidate(ctx)
	}
	if err := checkValue(s.typ, v); err != nil {
		return fmt.Errorf("set %s: %w", s.Path(), err)
	}
	s.value, s.valid = v, true
	s.emit(ctx)
	return nil
}

// Invalidate marks the source as having no value and propagates that.
func (s *Source) Invalidate(ctx context.Context) error {
	s.value, s.valid = nil, false
	s.emit(ctx)
	return nil
}

func (s *Source) emit(ctx context.Context) {
	s.changed.notify(ctx, s)
	if g := s.graph(); g != nil && len(s.sinks) > 0 {
		g.propagate(ctx, s.sinks...)
	}
}

// Sinks returns the connected sinks in connection order.
func (s *Source) Sinks() []*Sink { return slices.Clone(s.sinks) }

// MaxSinks returns the fan-out limit, 0 meaning unlimited.
func (s *Source) MaxSinks() int { return s.maxSinks }

// SetMaxSinks limits the number of sinks. It fails when more sinks are
// already connected.
func (s *Source) SetMaxSinks(n int) error {
	if n > 0 && len(s.sinks) > n {
		return fmt.Errorf("%w: %s has %d sinks", ErrMaxConnections, s.Path(), len(s.sinks))
	}
	s.maxSinks = n
	return nil
}

// Connect links the source to sink through the owning graph.
func (s *Source) Connect(ctx context.Context, sink *Sink) error {
	g := s.graph()
	if g == nil {
		return fmt.Errorf("connect %s: %w", s.Path(), ErrDetached)
	}
	return g.Connect(ctx, s, sink)
}

// Disconnect removes the link to sink.
func (s *Source) Disconnect(ctx context.Context, sink *Sink) error {
	g := s.graph()
	if g == nil {
		return fmt.Errorf("disconnect %s: %w", s.Path(), ErrDetached)
	}
	return g.Disconnect(ctx, s, sink)
}

// DisconnectAll removes every link of the source.
func (s *Source) DisconnectAll(ctx context.Context) error {
	for _, sink := range s.Sinks() {
		if err := s.Disconnect(ctx, sink); err != nil {
			return err
		}
	}
	return nil
}

// OnChanged registers fn to run after every set or invalidate. The
// returned function removes the observer.
func (s *Source) OnChanged(fn func(ctx context.Context, s *Source)) (cancel func()) {
	return s.changed.add(fn)
}

// Sink is an input dock. It observes the values of its connected sources.
type Sink struct {
	dock
	sources    []*Source
	maxSources int
	changed    observers[*Sink]
}

// NewSink creates a sink accepting values of type T with room for one source.
func NewSink[T any](name string) *Sink {
	return NewSinkOf(name, TypeOf[T]())
}

// NewSinkOf creates a sink with an explicit value type.
func NewSinkOf(name string, t reflect.Type) *Sink {
	if isAnyType(t) {
		t = nil
	}
	return &Sink{dock: dock{name: name, typ: t}, maxSources: 1}
}

// Value returns the value of the first connected source.
func (s *Sink) Value() (any, bool) {
	return s.ValueAt(0)
}

// ValueAt returns the value of the i-th connected source. It reports
// false when there is no such source, the source is invalid, or the value
// does not fit the sink type.
func (s *Sink) ValueAt(i int) (any, bool) {
	if i < 0 || i >= len(s.sources) {
		return nil, false
	}
	v, ok := s.sources[i].Value()
	if !ok || checkValue(s.typ, v) != nil {
		return nil, false
	}
	return v, true
}

// Values returns the values of all connected sources. It reports false if
// the sink has no source or any of them is invalid.
func (s *Sink) Values() ([]any, bool) {
	if len(s.sources) == 0 {
		return nil, false
	}
	values := make([]any, len(s.sources))
	for i := range s.sources {
		v, ok := s.ValueAt(i)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// Valid reports whether every upstream value is available.
func (s *Sink) Valid() bool {
	_, ok := s.Values()
	return ok
}

// Sources returns the connected sources in connection order.
func (s *Sink) Sources() []*Source { return slices.Clone(s.sources) }

// MaxSources returns the fan-in limit.
func (s *Sink) MaxSources() int { return s.maxSources }

// SetMaxSources sets the fan-in limit. Values below 1 are rejected.
func (s *Sink) SetMaxSources(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s needs room for at least one source", ErrMaxConnections, s.Path())
	}
	if len(s.sources) > n {
		return fmt.Errorf("%w: %s has %d sources", ErrMaxConnections, s.Path(), len(s.sources))
	}
	s.maxSources = n
	return nil
}

// Connect links source to the sink through the owning graph.
func (s *Sink) Connect(ctx context.Context, source *Source) error {
	g := s.graph()
	if g == nil {
		return fmt.Errorf("connect %s: %w", s.Path(), ErrDetached)
	}
	return g.Connect(ctx, source, s)
}

// Disconnect removes the link from source.
func (s *Sink) Disconnect(ctx context.Context, source *Source) error {
	g := s.graph()
	if g == nil {
		return fmt.Errorf("disconnect %s: %w", s.Path(), ErrDetached)
	}
	return g.Disconnect(ctx, source, s)
}

// DisconnectAll removes every link of the sink.
func (s *Sink) DisconnectAll(ctx context.Context) error {
	for _, src := range s.Sources() {
		if err := s.Disconnect(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

// OnChanged registers fn to run whenever the observed input changes.
func (s *Sink) OnChanged(fn func(ctx context.Context, s *Sink)) (cancel func()) {
	return s.changed.add(fn)
}
