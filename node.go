package dockflow

import (
	"context"
	"fmt"
	"slices"
)

// Logic recomputes a node's sources from the current values of its sinks.
// changed lists the sinks whose input changed since the last run; it is
// empty when the recompute was triggered explicitly.
type Logic interface {
	Compute(ctx context.Context, changed []*Sink) error
}

// LogicFunc adapts a function to the Logic interface.
type LogicFunc func(ctx context.Context, changed []*Sink) error

// Compute calls f.
func (f LogicFunc) Compute(ctx context.Context, changed []*Sink) error {
	return f(ctx, changed)
}

// Actor is implemented by node logic that reacts to external actions, such
// as a button press or a new operator choice in a user interface.
type Actor interface {
	Act(ctx context.Context, action string, arg any) error
}

// Element is anything that carries a Node. Node variants embed *Node and
// satisfy it through the promoted AsNode method.
type Element interface {
	AsNode() *Node
}

// Node is a computational unit owning an ordered set of sources and sinks.
type Node struct {
	name    string
	logic   Logic
	sources []*Source
	sinks   []*Sink
	graph   *Graph
	opts    nodeOptions
}

// nodeOptions holds configuration for a Node.
type nodeOptions struct {
	onError     func(error)
	keepOnError bool
}

// Option configures a Node.
type Option func(*nodeOptions)

// WithOnError sets a hook that receives errors returned by the node logic.
func WithOnError(fn func(error)) Option {
	return func(o *nodeOptions) {
		o.onError = fn
	}
}

// WithKeepOnError keeps the node's source values when its logic fails.
// By default every source is invalidated.
func WithKeepOnError() Option {
	return func(o *nodeOptions) {
		o.keepOnError = true
	}
}

// NewNode creates a node driven by logic. A nil logic gives a node that
// only holds docks.
func NewNode(name string, logic Logic, opts ...Option) *Node {
	n := &Node{name: name, logic: logic}
	for _, opt := range opts {
		opt(&n.opts)
	}
	return n
}

// AsNode returns n.
func (n *Node) AsNode() *Node { return n }

// Name returns the node's display name.
func (n *Node) Name() string { return n.name }

// Graph returns the graph holding the node, if any.
func (n *Node) Graph() *Graph { return n.graph }

// Logic returns the node's recomputation logic.
func (n *Node) Logic() Logic { return n.logic }

// Sources returns the node's sources in insertion order.
func (n *Node) Sources() []*Source { return slices.Clone(n.sources) }

// Sinks returns the node's sinks in insertion order.
func (n *Node) Sinks() []*Sink { return slices.Clone(n.sinks) }

// Source returns the source with the given name.
func (n *Node) Source(name string) (*Source, bool) {
	for _, s := range n.sources {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Sink returns the sink with the given name.
func (n *Node) Sink(name string) (*Sink, bool) {
	for _, s := range n.sinks {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// AddSource attaches src to the node.
func (n *Node) AddSource(src *Source) error {
	if src.node != nil {
		return fmt.Errorf("add source %q to %q: %w", src.name, n.name, ErrDockOwned)
	}
	if _, ok := n.Source(src.name); ok {
		return fmt.Errorf("add source %q to %q: %w", src.name, n.name, ErrDuplicateDock)
	}
	src.node = n
	n.sources = append(n.sources, src)
	if n.graph != nil {
		n.graph.topologyChanged()
	}
	return nil
}

// AddSink attaches sink to the node.
func (n *Node) AddSink(sink *Sink) error {
	if sink.node != nil {
		return fmt.Errorf("add sink %q to %q: %w", sink.name, n.name, ErrDockOwned)
	}
	if _, ok := n.Sink(sink.name); ok {
		return fmt.Errorf("add sink %q to %q: %w", sink.name, n.name, ErrDuplicateDock)
	}
	sink.node = n
	n.sinks = append(n.sinks, sink)
	if n.graph != nil {
		n.graph.topologyChanged()
	}
	return nil
}

// RemoveSource disconnects src from every sink and detaches it.
func (n *Node) RemoveSource(ctx context.Context, src *Source) error {
	if src.node != n {
		return fmt.Errorf("remove source %q from %q: %w", src.name, n.name, ErrDockNotFound)
	}
	if n.graph != nil {
		if err := src.DisconnectAll(ctx); err != nil {
			return err
		}
		n.graph.topologyChanged()
	}
	n.sources = slices.DeleteFunc(n.sources, func(s *Source) bool { return s == src })
	src.node = nil
	return nil
}

// RemoveSink disconnects sink from its sources, detaches it and schedules
// a recompute so the node can account for the lost input.
func (n *Node) RemoveSink(ctx context.Context, sink *Sink) error {
	if sink.node != n {
		return fmt.Errorf("remove sink %q from %q: %w", sink.name, n.name, ErrDockNotFound)
	}
	if n.graph != nil {
		if err := sink.DisconnectAll(ctx); err != nil {
			return err
		}
		n.graph.topologyChanged()
	}
	n.sinks = slices.DeleteFunc(n.sinks, func(s *Sink) bool { return s == sink })
	sink.node = nil
	n.Recompute(ctx)
	return nil
}

// Recompute runs the node logic as an explicit external trigger. Inside a
// graph the run joins the current propagation wave.
func (n *Node) Recompute(ctx context.Context) {
	if n.graph != nil {
		n.graph.schedule(ctx, n, nil)
		return
	}
	if err := n.compute(ctx, nil); err != nil && n.opts.onError != nil {
		n.opts.onError(err)
	}
}

// compute runs the logic and applies the node's error policy.
func (n *Node) compute(ctx context.Context, changed []*Sink) error {
	if n.logic == nil {
		return nil
	}
	err := n.logic.Compute(ctx, changed)
	if err == nil {
		return nil
	}
	if !n.opts.keepOnError {
		for _, src := range n.sources {
			_ = src.Invalidate(ctx)
		}
	}
	return fmt.Errorf("node %s: %w", n.name, err)
}
