package dockflow

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// DefaultMaxIterations bounds the node recomputes of one propagation wave
// in graphs that allow cycles.
const DefaultMaxIterations = 1000

// Graph owns a set of nodes and the connections between their docks, and
// propagates value changes along those connections.
//
// A Graph is not safe for concurrent use. Mutations and queries must come
// from one logical context at a time.
type Graph struct {
	name   string
	nodes  []*Node
	byName map[string]*Node
	opts   graphOptions

	// ranks caches topological ranks, nil when the topology changed.
	ranks map[*Node]int
	wave  wave
}

// graphOptions holds configuration for a Graph.
type graphOptions struct {
	logger        Logger
	tracer        Tracer
	allowCycles   bool
	maxIterations int
	onError       func(error)
}

// GraphOption configures a Graph.
type GraphOption func(*graphOptions)

// WithLogger adds logging to the graph.
func WithLogger(logger Logger) GraphOption {
	return func(o *graphOptions) {
		o.logger = logger
	}
}

// WithTracer adds tracing of propagation waves.
func WithTracer(tracer Tracer) GraphOption {
	return func(o *graphOptions) {
		o.tracer = tracer
	}
}

// WithAllowCycles lets connections close cycles. Propagation then visits
// nodes in FIFO order and may revisit them within a wave.
func WithAllowCycles(allow bool) GraphOption {
	return func(o *graphOptions) {
		o.allowCycles = allow
	}
}

// WithMaxIterations sets the per-wave recompute budget used when cycles
// are allowed.
func WithMaxIterations(n int) GraphOption {
	return func(o *graphOptions) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithErrorHandler receives node logic failures and aborted waves.
func WithErrorHandler(handler func(error)) GraphOption {
	return func(o *graphOptions) {
		o.onError = handler
	}
}

// NewGraph creates an empty graph.
func NewGraph(name string, opts ...GraphOption) *Graph {
	if name == "" {
		name = "graph"
	}
	g := &Graph{
		name:   name,
		byName: make(map[string]*Node),
		opts:   graphOptions{maxIterations: DefaultMaxIterations},
	}
	for _, opt := range opts {
		opt(&g.opts)
	}
	return g
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// AllowCycles reports whether connections may close cycles.
func (g *Graph) AllowCycles() bool { return g.opts.allowCycles }

// SetAllowCycles switches cycle allowance. Disallowing fails while the
// graph contains a cycle.
func (g *Graph) SetAllowCycles(allow bool) error {
	if !allow && g.hasCycle() {
		return ErrCycle
	}
	g.opts.allowCycles = allow
	g.topologyChanged()
	return nil
}

// Add inserts nodes into the graph.
func (g *Graph) Add(elems ...Element) error {
	nodes := make([]*Node, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for _, e := range elems {
		n := e.AsNode()
		if n.graph != nil {
			return fmt.Errorf("add %q: %w", n.name, ErrNodeInGraph)
		}
		if _, ok := g.byName[n.name]; ok || seen[n.name] {
			return fmt.Errorf("add %q: %w", n.name, ErrDuplicateNode)
		}
		seen[n.name] = true
		nodes = append(nodes, n)
	}
	// Nothing is inserted unless every element passed.
	for _, n := range nodes {
		n.graph = g
		g.nodes = append(g.nodes, n)
		g.byName[n.name] = n
	}
	g.topologyChanged()
	return nil
}

// Remove disconnects every dock of e and takes it out of the graph.
func (g *Graph) Remove(ctx context.Context, e Element) error {
	n := e.AsNode()
	if n.graph != g {
		return fmt.Errorf("remove %q: %w", n.name, ErrNodeNotFound)
	}
	for _, src := range n.sources {
		if err := src.DisconnectAll(ctx); err != nil {
			return err
		}
	}
	for _, sink := range n.sinks {
		if err := sink.DisconnectAll(ctx); err != nil {
			return err
		}
	}
	g.wave.drop(n)
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x == n })
	delete(g.byName, n.name)
	n.graph = nil
	g.topologyChanged()
	return nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Source resolves a "node.dock" path to a source.
func (g *Graph) Source(path string) (*Source, error) {
	n, dock, err := g.resolve(path)
	if err != nil {
		return nil, err
	}
	src, ok := n.Source(dock)
	if !ok {
		return nil, fmt.Errorf("source %q: %w", path, ErrDockNotFound)
	}
	return src, nil
}

// Sink resolves a "node.dock" path to a sink.
func (g *Graph) Sink(path string) (*Sink, error) {
	n, dock, err := g.resolve(path)
	if err != nil {
		return nil, err
	}
	sink, ok := n.Sink(dock)
	if !ok {
		return nil, fmt.Errorf("sink %q: %w", path, ErrDockNotFound)
	}
	return sink, nil
}

func (g *Graph) resolve(path string) (*Node, string, error) {
	name, dock, ok := strings.Cut(path, ".")
	if !ok || name == "" || dock == "" {
		return nil, "", fmt.Errorf("dock path %q: %w", path, ErrDockNotFound)
	}
	n, ok := g.byName[name]
	if !ok {
		return nil, "", fmt.Errorf("dock path %q: %w", path, ErrNodeNotFound)
	}
	return n, dock, nil
}

// Connect links src to sink. Rejected connections leave the graph
// unchanged. On success the sink receives the source's current value.
func (g *Graph) Connect(ctx context.Context, src *Source, sink *Sink) error {
	if err := g.checkConnect(src, sink); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", src.Path(), sink.Path(), err)
	}

	src.sinks = append(src.sinks, sink)
	sink.sources = append(sink.sources, src)
	g.topologyChanged()

	if g.opts.logger != nil {
		g.opts.logger.Debug(ctx, "docks connected", "source", src.Path(), "sink", sink.Path())
	}

	g.propagate(ctx, sink)
	return nil
}

func (g *Graph) checkConnect(src *Source, sink *Sink) error {
	if src.node == nil || src.node.graph != g || sink.node == nil || sink.node.graph != g {
		return ErrNodeNotFound
	}
	if slices.Contains(src.sinks, sink) {
		return ErrAlreadyConnected
	}
	if !Compatible(src.typ, sink.typ) {
		return fmt.Errorf("%w: source is %s, sink is %s", ErrTypeMismatch, TypeName(src.typ), TypeName(sink.typ))
	}
	if len(sink.sources) >= sink.maxSources {
		return fmt.Errorf("%w: sink accepts %d sources", ErrMaxConnections, sink.maxSources)
	}
	if src.maxSinks > 0 && len(src.sinks) >= src.maxSinks {
		return fmt.Errorf("%w: source accepts %d sinks", ErrMaxConnections, src.maxSinks)
	}
	if !g.opts.allowCycles && g.reaches(sink.node, src.node) {
		return ErrCycle
	}
	return nil
}

// Disconnect removes the link between src and sink. The sink's node is
// notified that its input is gone.
func (g *Graph) Disconnect(ctx context.Context, src *Source, sink *Sink) error {
	if src.node == nil || src.node.graph != g {
		return fmt.Errorf("disconnect %s -> %s: %w", src.Path(), sink.Path(), ErrNodeNotFound)
	}
	if !slices.Contains(src.sinks, sink) {
		return fmt.Errorf("disconnect %s -> %s: %w", src.Path(), sink.Path(), ErrNotConnected)
	}

	src.sinks = slices.DeleteFunc(src.sinks, func(s *Sink) bool { return s == sink })
	sink.sources = slices.DeleteFunc(sink.sources, func(s *Source) bool { return s == src })
	g.topologyChanged()

	if g.opts.logger != nil {
		g.opts.logger.Debug(ctx, "docks disconnected", "source", src.Path(), "sink", sink.Path())
	}

	g.propagate(ctx, sink)
	return nil
}

// Connection is a Source to Sink edge.
type Connection struct {
	Source *Source
	Sink   *Sink
}

// String returns "node.dock -> node.dock".
func (c Connection) String() string {
	return c.Source.Path() + " -> " + c.Sink.Path()
}

// Connections lists every edge, ordered by node, source and connection order.
func (g *Graph) Connections() []Connection {
	var conns []Connection
	for _, n := range g.nodes {
		for _, src := range n.sources {
			for _, sink := range src.sinks {
				conns = append(conns, Connection{Source: src, Sink: sink})
			}
		}
	}
	return conns
}

// Values snapshots every source value keyed by "node.dock". Invalid
// sources map to nil.
func (g *Graph) Values() map[string]any {
	values := make(map[string]any)
	for _, n := range g.nodes {
		for _, src := range n.sources {
			v, _ := src.Value()
			values[src.Path()] = v
		}
	}
	return values
}

// Act forwards an external action to the logic of the named node.
func (g *Graph) Act(ctx context.Context, node, action string, arg any) error {
	n, ok := g.byName[node]
	if !ok {
		return fmt.Errorf("act %q on %q: %w", action, node, ErrNodeNotFound)
	}
	actor, ok := n.logic.(Actor)
	if !ok {
		return fmt.Errorf("act %q on %q: %w", action, node, ErrUnknownAction)
	}
	if g.opts.logger != nil {
		g.opts.logger.Debug(ctx, "node action", "node", node, "action", action)
	}
	return actor.Act(ctx, action, arg)
}

// Validate checks that every connection appears in both docks, every dock
// is owned by a node of this graph, limits hold, and that the graph is
// acyclic unless cycles are allowed.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		if n.graph != g {
			return fmt.Errorf("%w: node %q points to another graph", ErrInconsistent, n.name)
		}
		for _, src := range n.sources {
			if src.node != n {
				return fmt.Errorf("%w: source %q has wrong owner", ErrInconsistent, src.Path())
			}
			if src.maxSinks > 0 && len(src.sinks) > src.maxSinks {
				return fmt.Errorf("%w: source %q over its limit", ErrInconsistent, src.Path())
			}
			for _, sink := range src.sinks {
				if sink.node == nil || sink.node.graph != g || !slices.Contains(sink.sources, src) {
					return fmt.Errorf("%w: %s -> %s is one-sided", ErrInconsistent, src.Path(), sink.Path())
				}
			}
		}
		for _, sink := range n.sinks {
			if sink.node != n {
				return fmt.Errorf("%w: sink %q has wrong owner", ErrInconsistent, sink.Path())
			}
			if len(sink.sources) > sink.maxSources {
				return fmt.Errorf("%w: sink %q over its limit", ErrInconsistent, sink.Path())
			}
			for _, src := range sink.sources {
				if src.node == nil || src.node.graph != g || !slices.Contains(src.sinks, sink) {
					return fmt.Errorf("%w: %s -> %s is one-sided", ErrInconsistent, src.Path(), sink.Path())
				}
			}
		}
	}
	if !g.opts.allowCycles && g.hasCycle() {
		return ErrCycle
	}
	return nil
}

// downstream returns the distinct nodes fed by n, in dock order.
func downstream(n *Node) []*Node {
	var out []*Node
	for _, src := range n.sources {
		for _, sink := range src.sinks {
			if sink.node != nil && !slices.Contains(out, sink.node) {
				out = append(out, sink.node)
			}
		}
	}
	return out
}

// reaches reports whether to is reachable from from along connections.
func (g *Graph) reaches(from, to *Node) bool {
	seen := make(map[*Node]bool)
	stack := []*Node{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, downstream(n)...)
	}
	return false
}

func (g *Graph) hasCycle() bool {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*Node]int, len(g.nodes))
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		color[n] = grey
		for _, next := range downstream(n) {
			switch color[next] {
			case grey:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}
	for _, n := range g.nodes {
		if color[n] == white && visit(n) {
			return true
		}
	}
	return false
}

func (g *Graph) topologyChanged() {
	g.ranks = nil
}

// rank returns the length of the longest path from a root to n. Only
// meaningful while the graph is acyclic.
func (g *Graph) rank(n *Node) int {
	if g.ranks == nil {
		g.ranks = make(map[*Node]int, len(g.nodes))
	}
	if r, ok := g.ranks[n]; ok {
		return r
	}
	r := 0
	for _, sink := range n.sinks {
		for _, src := range sink.sources {
			if src.node != nil && src.node != n {
				r = max(r, g.rank(src.node)+1)
			}
		}
	}
	g.ranks[n] = r
	return r
}

// Logger provides structured logging.
type Logger interface {
	Debug(ctx context.Context, msg string, keysAndValues ...any)
	Info(ctx context.Context, msg string, keysAndValues ...any)
	Error(ctx context.Context, msg string, keysAndValues ...any)
}

// Tracer provides tracing of propagation waves.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, func())
}
