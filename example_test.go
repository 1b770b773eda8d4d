package dockflow_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/agentstation/dockflow"
)

// ExampleGraph wires two numbers into an adding node.
func ExampleGraph() {
	ctx := context.Background()

	a := dockflow.NewSource[float64]("a")
	b := dockflow.NewSource[float64]("b")
	numbers := dockflow.NewNode("numbers", nil)
	_ = numbers.AddSource(a)
	_ = numbers.AddSource(b)

	x := dockflow.NewSink[float64]("x")
	y := dockflow.NewSink[float64]("y")
	sum := dockflow.NewSource[float64]("sum")
	adder := dockflow.NewNode("adder", dockflow.LogicFunc(func(ctx context.Context, _ []*dockflow.Sink) error {
		vx, okX := x.Value()
		vy, okY := y.Value()
		if !okX || !okY {
			return sum.Invalidate(ctx)
		}
		return sum.Set(ctx, vx.(float64)+vy.(float64))
	}))
	_ = adder.AddSink(x)
	_ = adder.AddSink(y)
	_ = adder.AddSource(sum)

	g := dockflow.NewGraph("calculator")
	if err := g.Add(numbers, adder); err != nil {
		log.Fatal(err)
	}
	_ = g.Connect(ctx, a, x)
	_ = g.Connect(ctx, b, y)

	_ = a.Set(ctx, 2.0)
	_, ok := sum.Value()
	fmt.Println("valid with one operand:", ok)

	_ = b.Set(ctx, 3.0)
	v, _ := sum.Value()
	fmt.Println("sum:", v)
	// Output:
	// valid with one operand: false
	// sum: 5
}

// ExampleGraph_Connect shows a rejected connection.
func ExampleGraph_Connect() {
	ctx := context.Background()

	text := dockflow.NewNode("text", nil)
	out := dockflow.NewSource[string]("out")
	_ = text.AddSource(out)

	number := dockflow.NewNode("number", nil)
	in := dockflow.NewSink[float64]("in")
	_ = number.AddSink(in)

	g := dockflow.NewGraph("types")
	_ = g.Add(text, number)

	err := g.Connect(ctx, out, in)
	fmt.Println(errors.Is(err, dockflow.ErrTypeMismatch))
	fmt.Println(len(g.Connections()))
	// Output:
	// true
	// 0
}

// ExampleSink_OnChanged shows how a display can follow a dock.
func ExampleSink_OnChanged() {
	ctx := context.Background()

	source := dockflow.NewSource[string]("text")
	entry := dockflow.NewNode("entry", nil)
	_ = entry.AddSource(source)

	label := dockflow.NewSink[string]("label")
	display := dockflow.NewNode("display", nil)
	_ = display.AddSink(label)

	g := dockflow.NewGraph("display")
	_ = g.Add(entry, display)
	_ = g.Connect(ctx, source, label)

	label.OnChanged(func(ctx context.Context, s *dockflow.Sink) {
		if v, ok := s.Value(); ok {
			fmt.Printf("label: %q\n", v)
			return
		}
		fmt.Println("label cleared")
	})

	_ = source.Set(ctx, "hello")
	_ = source.Invalidate(ctx)
	// Output:
	// label: "hello"
	// label cleared
}
