package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/dockflow"
)

// Text emits a string typed in from outside the graph, such as an entry
// widget.
type Text struct {
	*dockflow.Node
	Output *dockflow.Source

	value string
}

// NewText creates a string node holding value.
func NewText(name, value string, opts ...dockflow.Option) *Text {
	t := &Text{Output: dockflow.NewSource[string]("output"), value: value}
	t.Node = dockflow.NewNode(name, t, opts...)
	_ = t.AddSource(t.Output)
	_ = t.Output.Set(context.Background(), value)
	return t
}

// Value returns the current string.
func (t *Text) Value() string { return t.value }

// Set emits a new string.
func (t *Text) Set(ctx context.Context, v string) error {
	t.value = v
	return t.Output.Set(ctx, v)
}

// Compute re-emits the current string.
func (t *Text) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	return t.Output.Set(ctx, t.value)
}

// Act handles the set action.
func (t *Text) Act(ctx context.Context, action string, arg any) error {
	if action != ActionSet {
		return fmt.Errorf("%w: %s", dockflow.ErrUnknownAction, action)
	}
	s, ok := arg.(string)
	if !ok {
		s = FormatValue(arg)
	}
	return t.Set(ctx, s)
}

// Concat joins its a and b sinks. A missing operand counts as the empty
// string, so the output is always valid.
type Concat struct {
	*dockflow.Node
	A, B   *dockflow.Sink
	Output *dockflow.Source
}

// NewConcat creates a concatenation node.
func NewConcat(name string, opts ...dockflow.Option) *Concat {
	c := &Concat{
		A:      dockflow.NewSink[string]("a"),
		B:      dockflow.NewSink[string]("b"),
		Output: dockflow.NewSource[string]("output"),
	}
	c.Node = dockflow.NewNode(name, c, opts...)
	_ = c.AddSink(c.A)
	_ = c.AddSink(c.B)
	_ = c.AddSource(c.Output)
	_ = c.Output.Set(context.Background(), "")
	return c
}

// Compute concatenates the operands.
func (c *Concat) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	a, _ := c.A.Value()
	b, _ := c.B.Value()
	return c.Output.Set(ctx, FormatValue(a)+FormatValue(b))
}

// Convert renders a number as a string.
type Convert struct {
	*dockflow.Node
	Input  *dockflow.Sink
	Output *dockflow.Source
}

// NewConvert creates a number to string conversion node.
func NewConvert(name string, opts ...dockflow.Option) *Convert {
	c := &Convert{
		Input:  dockflow.NewSink[float64]("input"),
		Output: dockflow.NewSource[string]("output"),
	}
	c.Node = dockflow.NewNode(name, c, opts...)
	_ = c.AddSink(c.Input)
	_ = c.AddSource(c.Output)
	return c
}

// Compute converts the input, invalidating the output when it is missing.
func (c *Convert) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	v, ok := c.Input.Value()
	if !ok {
		return c.Output.Invalidate(ctx)
	}
	return c.Output.Set(ctx, FormatValue(v))
}
