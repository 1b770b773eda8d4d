package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/dockflow"
)

// Actions of the cycle nodes.
const (
	ActionStart = "start"
	ActionReset = "reset"
)

// Starter emits 1 on its emitter source when started, like a button.
type Starter struct {
	*dockflow.Node
	Emitter *dockflow.Source
}

// NewStarter creates a starter node with an invalid emitter.
func NewStarter(name string, opts ...dockflow.Option) *Starter {
	s := &Starter{Emitter: dockflow.NewSource[float64]("emitter")}
	s.Node = dockflow.NewNode(name, s, opts...)
	_ = s.AddSource(s.Emitter)
	return s
}

// Start emits 1.
func (s *Starter) Start(ctx context.Context) error {
	return s.Emitter.Set(ctx, 1.0)
}

// Compute does nothing; the emitter only changes on start.
func (s *Starter) Compute(context.Context, []*dockflow.Sink) error { return nil }

// Act handles the start action.
func (s *Starter) Act(ctx context.Context, action string, _ any) error {
	if action != ActionStart {
		return fmt.Errorf("%w: %s", dockflow.ErrUnknownAction, action)
	}
	return s.Start(ctx)
}

// DefaultTarget is the count a counter stops at.
const DefaultTarget = 10

// Counter counts up while its enable input is 1. Every change on enable or
// clock advances the count until the target is reached. Connecting the
// counted source back to the clock sink makes the node drive itself, which
// requires a graph allowing cycles.
type Counter struct {
	*dockflow.Node
	Enable, Clock   *dockflow.Sink
	Result, Counted *dockflow.Source

	count  float64
	target float64
}

// NewCounter creates a counter stopping at target.
func NewCounter(name string, target float64, opts ...dockflow.Option) *Counter {
	c := &Counter{
		Enable:  dockflow.NewSink[float64]("enable"),
		Clock:   dockflow.NewSink[float64]("clock"),
		Result:  dockflow.NewSource[float64]("result"),
		Counted: dockflow.NewSource[float64]("counted"),
		target:  target,
	}
	c.Node = dockflow.NewNode(name, c, opts...)
	_ = c.AddSink(c.Enable)
	_ = c.AddSink(c.Clock)
	_ = c.AddSource(c.Result)
	_ = c.AddSource(c.Counted)
	return c
}

// Count returns the current count.
func (c *Counter) Count() float64 { return c.count }

// Target returns the count the node stops at.
func (c *Counter) Target() float64 { return c.target }

// Compute advances the count. When disabled the outputs keep their values.
func (c *Counter) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	enable, ok := c.Enable.Value()
	if !ok || enable.(float64) != 1 {
		return nil
	}
	if c.count < c.target {
		c.count++
		if err := c.Counted.Set(ctx, c.count); err != nil {
			return err
		}
	}
	return c.Result.Set(ctx, c.count)
}

// Act handles the reset action. While enabled the count starts over.
func (c *Counter) Act(ctx context.Context, action string, _ any) error {
	if action != ActionReset {
		return fmt.Errorf("%w: %s", dockflow.ErrUnknownAction, action)
	}
	c.count = 0
	c.Recompute(ctx)
	return nil
}
