package dockflow

import (
	"context"
	"fmt"
	"slices"
)

// wave is the state of one propagation pass. The outermost change opens
// it; changes made by node logic while it runs are queued into it.
type wave struct {
	active     bool
	queue      []*pending
	index      map[*Node]*pending
	seq        int
	iterations int
	// visited holds the nodes already recomputed in an acyclic wave.
	visited map[*Node]bool
}

// pending is a queued node recompute with the sinks that changed.
type pending struct {
	node    *Node
	changed []*Sink
	seq     int
}

func (w *wave) enqueue(n *Node, sink *Sink) {
	if w.index == nil {
		w.index = make(map[*Node]*pending)
	}
	if p, ok := w.index[n]; ok {
		if sink != nil && !slices.Contains(p.changed, sink) {
			p.changed = append(p.changed, sink)
		}
		return
	}
	w.seq++
	p := &pending{node: n, seq: w.seq}
	if sink != nil {
		p.changed = []*Sink{sink}
	}
	w.queue = append(w.queue, p)
	w.index[n] = p
}

func (w *wave) drop(n *Node) {
	if _, ok := w.index[n]; !ok {
		return
	}
	delete(w.index, n)
	w.queue = slices.DeleteFunc(w.queue, func(p *pending) bool { return p.node == n })
}

func (w *wave) reset() {
	w.active = false
	w.queue = nil
	w.index = nil
	w.seq = 0
	w.iterations = 0
	w.visited = nil
}

// next pops the following recompute. Cyclic graphs run FIFO; acyclic
// graphs run the lowest topological rank first, ties in queue order.
func (g *Graph) next() *pending {
	w := &g.wave
	at := 0
	if !g.opts.allowCycles {
		best := g.rank(w.queue[0].node)
		for i, p := range w.queue[1:] {
			if r := g.rank(p.node); r < best {
				best, at = r, i+1
			}
		}
	}
	p := w.queue[at]
	w.queue = slices.Delete(w.queue, at, at+1)
	delete(w.index, p.node)
	return p
}

// propagate notifies sinks of a new input and recomputes their nodes.
func (g *Graph) propagate(ctx context.Context, sinks ...*Sink) {
	// Sink observers may change other sources; those changes join this wave.
	owner := !g.wave.active
	g.wave.active = true
	for _, sink := range sinks {
		sink.changed.notify(ctx, sink)
		if sink.node != nil && sink.node.graph == g {
			g.wave.enqueue(sink.node, sink)
		}
	}
	if owner {
		g.run(ctx)
	}
}

// schedule queues an explicit recompute of n.
func (g *Graph) schedule(ctx context.Context, n *Node, sink *Sink) {
	g.wave.enqueue(n, sink)
	if !g.wave.active {
		g.run(ctx)
	}
}

// run drains the wave queue.
func (g *Graph) run(ctx context.Context) {
	w := &g.wave
	w.active = true
	defer w.reset()

	if g.opts.tracer != nil {
		var end func()
		ctx, end = g.opts.tracer.StartSpan(ctx, "dockflow.propagate")
		defer end()
	}

	if g.opts.logger != nil {
		g.opts.logger.Debug(ctx, "propagation wave started", "graph", g.name, "queued", len(w.queue))
	}

	for len(w.queue) > 0 {
		if g.opts.allowCycles && w.iterations >= g.opts.maxIterations {
			g.report(ctx, nil, fmt.Errorf("%w: %d recomputes in graph %q", ErrPropagationLimit, w.iterations, g.name))
			return
		}

		p := g.next()
		if p.node.graph != g {
			continue
		}
		if !g.opts.allowCycles {
			if w.visited[p.node] {
				g.report(ctx, p.node, fmt.Errorf("%w: %q in graph %q", ErrRevisit, p.node.name, g.name))
				continue
			}
			if w.visited == nil {
				w.visited = make(map[*Node]bool)
			}
			w.visited[p.node] = true
		}
		w.iterations++

		if g.opts.logger != nil {
			g.opts.logger.Debug(ctx, "recomputing node", "node", p.node.name, "changed", len(p.changed))
		}

		g.recompute(ctx, p)
	}

	if g.opts.logger != nil {
		g.opts.logger.Debug(ctx, "propagation wave finished", "graph", g.name, "recomputes", w.iterations)
	}
}

// recompute runs one queued node, inside a span when tracing.
func (g *Graph) recompute(ctx context.Context, p *pending) {
	if g.opts.tracer != nil {
		var end func()
		ctx, end = g.opts.tracer.StartSpan(ctx, "dockflow.compute/"+p.node.name)
		defer end()
	}
	if err := p.node.compute(ctx, p.changed); err != nil {
		g.report(ctx, p.node, err)
	}
}

// report delivers a propagation failure to the logger and handlers.
func (g *Graph) report(ctx context.Context, n *Node, err error) {
	if g.opts.logger != nil {
		name := ""
		if n != nil {
			name = n.name
		}
		g.opts.logger.Error(ctx, "propagation failed", "graph", g.name, "node", name, "error", err)
	}
	if n != nil && n.opts.onError != nil {
		n.opts.onError(err)
	}
	if g.opts.onError != nil {
		g.opts.onError(err)
	}
}
