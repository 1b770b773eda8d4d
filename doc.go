/*
Package dockflow provides a small dataflow core: nodes own typed docks,
a graph connects output docks (sources) to input docks (sinks), and value
changes propagate synchronously along those connections.

Key features:
  - Typed docks with polymorphic "any" docks
  - Fan-out from sources, bounded fan-in on sinks
  - Invalidation instead of sentinel values
  - Topologically ordered propagation waves
  - Opt-in cycles with a per-wave iteration budget
  - Per-dock observers for user interfaces

Basic usage:

	sum := dockflow.NewNode("sum", nil)
	a := dockflow.NewSink[float64]("a")
	b := dockflow.NewSink[float64]("b")
	result := dockflow.NewSource[float64]("result")
	_ = sum.AddSink(a)
	_ = sum.AddSink(b)
	_ = sum.AddSource(result)

Node logic reads its sinks and sets or invalidates its sources:

	logic := dockflow.LogicFunc(func(ctx context.Context, _ []*dockflow.Sink) error {
		va, okA := a.Value()
		vb, okB := b.Value()
		if !okA || !okB {
			return result.Invalidate(ctx)
		}
		return result.Set(ctx, va.(float64)+vb.(float64))
	})

Connecting docks:

	g := dockflow.NewGraph("calculator")
	_ = g.Add(number, sum)
	err := g.Connect(ctx, output, a)
	// errors.Is(err, dockflow.ErrTypeMismatch) for incompatible docks

Cycles:

	g := dockflow.NewGraph("counter",
		dockflow.WithAllowCycles(true),
		dockflow.WithMaxIterations(100),
	)
*/
package dockflow
