package testutil

import (
	"context"
	"testing"

	"github.com/agentstation/dockflow"
)

// Constant is a node holding one float64 source named "output".
type Constant struct {
	*dockflow.Node
	Output *dockflow.Source
}

// NewConstant creates a constant node. A nil value leaves the source
// invalid.
func NewConstant(t testing.TB, name string, value any) *Constant {
	t.Helper()

	c := &Constant{
		Node:   dockflow.NewNode(name, nil),
		Output: dockflow.NewSource[float64]("output"),
	}
	if err := c.AddSource(c.Output); err != nil {
		t.Fatal(err)
	}
	if value != nil {
		if err := c.Output.Set(context.Background(), value); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

// Probe is a node with a single polymorphic sink named "input" that
// records every value it sees. Invalid inputs are recorded as nil.
type Probe struct {
	*dockflow.Node
	Input *dockflow.Sink
	Seen  []any
}

// NewProbe creates a probe node.
func NewProbe(t testing.TB, name string) *Probe {
	t.Helper()

	p := &Probe{Input: dockflow.NewSink[any]("input")}
	p.Node = dockflow.NewNode(name, dockflow.LogicFunc(func(ctx context.Context, _ []*dockflow.Sink) error {
		v, _ := p.Input.Value()
		p.Seen = append(p.Seen, v)
		return nil
	}))
	if err := p.AddSink(p.Input); err != nil {
		t.Fatal(err)
	}
	return p
}

// Last returns the most recent value seen, nil if none.
func (p *Probe) Last() any {
	if len(p.Seen) == 0 {
		return nil
	}
	return p.Seen[len(p.Seen)-1]
}

// Wire adds the elements to g and connects each pair of
// "node.dock" paths, failing the test on any error.
func Wire(t testing.TB, g *dockflow.Graph, elems []dockflow.Element, conns ...[2]string) {
	t.Helper()

	if err := g.Add(elems...); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, c := range conns {
		src, err := g.Source(c[0])
		if err != nil {
			t.Fatal(err)
		}
		sink, err := g.Sink(c[1])
		if err != nil {
			t.Fatal(err)
		}
		if err := g.Connect(ctx, src, sink); err != nil {
			t.Fatalf("connect %s -> %s: %v", c[0], c[1], err)
		}
	}
}
