package dockflow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/agentstation/dockflow"
)

// Benchmark node and dock creation.
func BenchmarkNewNode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		n := dockflow.NewNode("bench", nil)
		_ = n.AddSink(dockflow.NewSink[float64]("in"))
		_ = n.AddSource(dockflow.NewSource[float64]("out"))
	}
}

// Benchmark a set without any connected sink.
func BenchmarkSetUnconnected(b *testing.B) {
	ctx := context.Background()
	n := newNumber(b, "n", 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.out.Set(ctx, float64(i))
	}
}

// Benchmark propagation through a chain of adders.
func BenchmarkPropagateChain(b *testing.B) {
	for _, length := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("length=%d", length), func(b *testing.B) {
			ctx := context.Background()
			g := dockflow.NewGraph("chain")
			head := newNumber(b, "head", 0)
			_ = g.Add(head)

			prev := head.out
			for i := range length {
				a := newAdder(b, fmt.Sprintf("a%d", i), 1)
				_ = g.Add(a)
				if err := g.Connect(ctx, prev, a.summands[0]); err != nil {
					b.Fatal(err)
				}
				prev = a.result
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = head.out.Set(ctx, float64(i))
			}
		})
	}
}

// Benchmark one source feeding many nodes.
func BenchmarkPropagateFanOut(b *testing.B) {
	ctx := context.Background()
	g := dockflow.NewGraph("fan-out")
	head := newNumber(b, "head", 0)
	_ = g.Add(head)
	for i := range 100 {
		a := newAdder(b, fmt.Sprintf("a%d", i), 1)
		_ = g.Add(a)
		if err := g.Connect(ctx, head.out, a.summands[0]); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = head.out.Set(ctx, float64(i))
	}
}

// Benchmark a diamond, where rank ordering recomputes the join once.
func BenchmarkPropagateDiamond(b *testing.B) {
	ctx := context.Background()
	g := dockflow.NewGraph("diamond")
	head := newNumber(b, "head", 0)
	left, right := newAdder(b, "left", 1), newAdder(b, "right", 1)
	join := newAdder(b, "join", 2)
	_ = g.Add(head, left, right, join)
	_ = g.Connect(ctx, head.out, left.summands[0])
	_ = g.Connect(ctx, head.out, right.summands[0])
	_ = g.Connect(ctx, left.result, join.summands[0])
	_ = g.Connect(ctx, right.result, join.summands[1])

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = head.out.Set(ctx, float64(i))
	}
}

// Benchmark a self-driving cycle of 100 steps.
func BenchmarkCyclicCounter(b *testing.B) {
	ctx := context.Background()
	g := dockflow.NewGraph("cycle", dockflow.WithAllowCycles(true))
	c := newCounter(b, 100)
	_ = g.Add(c)
	_ = g.Connect(ctx, c.count, c.clock)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.count.Set(ctx, 0.0)
	}
}

// Benchmark connect and disconnect, including cycle checks.
func BenchmarkConnectDisconnect(b *testing.B) {
	ctx := context.Background()
	g := dockflow.NewGraph("wiring")
	n := newNumber(b, "n", 1)
	a := newAdder(b, "a", 1)
	_ = g.Add(n, a)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.Connect(ctx, n.out, a.summands[0])
		_ = g.Disconnect(ctx, n.out, a.summands[0])
	}
}
