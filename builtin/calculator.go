package builtin

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/agentstation/dockflow"
)

// Action names understood by the calculator nodes.
const (
	ActionSet      = "set"
	ActionOperator = "operator"
)

// Operators lists the operators of operation nodes.
var Operators = []string{"+", "-", "*", "/"}

// Number emits a number chosen from outside the graph, such as a spin
// button. Values are clamped to the node's range.
type Number struct {
	*dockflow.Node
	Output *dockflow.Source

	value    float64
	min, max float64
}

// NewNumber creates a number node holding value.
func NewNumber(name string, value float64, opts ...dockflow.Option) *Number {
	n := &Number{
		Output: dockflow.NewSource[float64]("output"),
		min:    math.Inf(-1),
		max:    math.Inf(1),
	}
	n.Node = dockflow.NewNode(name, n, opts...)
	_ = n.AddSource(n.Output)
	n.value = value
	// Not yet in a graph, so this only stores the value.
	_ = n.Output.Set(context.Background(), value)
	return n
}

// SetRange limits the values the node emits and re-emits the clamped value.
func (n *Number) SetRange(ctx context.Context, lo, hi float64) error {
	if lo > hi {
		return fmt.Errorf("%w: min %v is above max %v", ErrInvalidConfig, lo, hi)
	}
	n.min, n.max = lo, hi
	n.value = clamp(n.value, lo, hi)
	return n.Output.Set(ctx, n.value)
}

// Value returns the current number.
func (n *Number) Value() float64 { return n.value }

// Set clamps v into range and emits it.
func (n *Number) Set(ctx context.Context, v float64) error {
	n.value = clamp(v, n.min, n.max)
	return n.Output.Set(ctx, n.value)
}

// Compute re-emits the current number.
func (n *Number) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	return n.Output.Set(ctx, n.value)
}

// Act handles the set action.
func (n *Number) Act(ctx context.Context, action string, arg any) error {
	if action != ActionSet {
		return fmt.Errorf("%w: %s", dockflow.ErrUnknownAction, action)
	}
	v, ok := toFloat(arg)
	if !ok {
		return fmt.Errorf("%w: set needs a number, got %T", dockflow.ErrTypeMismatch, arg)
	}
	return n.Set(ctx, v)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Operation applies a binary operator to its a and b sinks.
type Operation struct {
	*dockflow.Node
	A, B   *dockflow.Sink
	Result *dockflow.Source

	operator string
}

// NewOperation creates an operation node. An empty operator leaves the
// result invalid until one is chosen.
func NewOperation(name, operator string, opts ...dockflow.Option) (*Operation, error) {
	if operator != "" && !slices.Contains(Operators, operator) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
	o := &Operation{
		A:        dockflow.NewSink[float64]("a"),
		B:        dockflow.NewSink[float64]("b"),
		Result:   dockflow.NewSource[float64]("result"),
		operator: operator,
	}
	o.Node = dockflow.NewNode(name, o, opts...)
	_ = o.AddSink(o.A)
	_ = o.AddSink(o.B)
	_ = o.AddSource(o.Result)
	return o, nil
}

// Operator returns the selected operator.
func (o *Operation) Operator() string { return o.operator }

// SetOperator selects a new operator and recomputes the result.
func (o *Operation) SetOperator(ctx context.Context, operator string) error {
	if !slices.Contains(Operators, operator) {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
	o.operator = operator
	o.Recompute(ctx)
	return nil
}

// Compute applies the operator. A missing operand invalidates the result.
func (o *Operation) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	va, okA := o.A.Value()
	vb, okB := o.B.Value()
	if !okA || !okB {
		return o.Result.Invalidate(ctx)
	}
	a, b := va.(float64), vb.(float64)

	switch o.operator {
	case "+":
		return o.Result.Set(ctx, a+b)
	case "-":
		return o.Result.Set(ctx, a-b)
	case "*":
		return o.Result.Set(ctx, a*b)
	case "/":
		if b == 0 {
			return ErrDivisionByZero
		}
		return o.Result.Set(ctx, a/b)
	default:
		return o.Result.Invalidate(ctx)
	}
}

// Act handles the operator action.
func (o *Operation) Act(ctx context.Context, action string, arg any) error {
	if action != ActionOperator {
		return fmt.Errorf("%w: %s", dockflow.ErrUnknownAction, action)
	}
	op, ok := arg.(string)
	if !ok {
		return fmt.Errorf("%w: operator must be a string, got %T", dockflow.ErrTypeMismatch, arg)
	}
	return o.SetOperator(ctx, op)
}

// Add sums every source connected to its summands sink. Without any
// summand the result is 0.
type Add struct {
	*dockflow.Node
	Summands *dockflow.Sink
	Result   *dockflow.Source
}

// DefaultMaxSummands is the summand limit of add nodes.
const DefaultMaxSummands = 16

// NewAdd creates an add node accepting up to maxSummands sources.
func NewAdd(name string, maxSummands int, opts ...dockflow.Option) (*Add, error) {
	a := &Add{
		Summands: dockflow.NewSink[float64]("summands"),
		Result:   dockflow.NewSource[float64]("result"),
	}
	if err := a.Summands.SetMaxSources(maxSummands); err != nil {
		return nil, err
	}
	a.Node = dockflow.NewNode(name, a, opts...)
	_ = a.AddSink(a.Summands)
	_ = a.AddSource(a.Result)
	// With no summands the sum is 0.
	_ = a.Result.Set(context.Background(), 0.0)
	return a, nil
}

// Compute sums the summands. Any invalid summand invalidates the result.
func (a *Add) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	if len(a.Summands.Sources()) == 0 {
		return a.Result.Set(ctx, 0.0)
	}
	values, ok := a.Summands.Values()
	if !ok {
		return a.Result.Invalidate(ctx)
	}
	sum := 0.0
	for _, v := range values {
		sum += v.(float64)
	}
	return a.Result.Set(ctx, sum)
}

// Print renders its input as text, the way a label widget would show it.
// A sink accepting several sources renders one line per valid source.
type Print struct {
	*dockflow.Node
	Input *dockflow.Sink

	text      string
	listeners []func(ctx context.Context, text string)
}

// NewPrint creates a print node. t is the input type, nil for any, and
// maxSources the number of sources the input accepts.
func NewPrint(name string, t reflect.Type, maxSources int, opts ...dockflow.Option) (*Print, error) {
	p := &Print{Input: dockflow.NewSinkOf("input", t)}
	if err := p.Input.SetMaxSources(maxSources); err != nil {
		return nil, err
	}
	p.Node = dockflow.NewNode(name, p, opts...)
	_ = p.AddSink(p.Input)
	return p, nil
}

// Text returns the last rendered text.
func (p *Print) Text() string { return p.text }

// OnPrint registers fn to receive every rendered text.
func (p *Print) OnPrint(fn func(ctx context.Context, text string)) {
	p.listeners = append(p.listeners, fn)
}

// Compute renders the input.
func (p *Print) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	if p.Input.MaxSources() > 1 {
		var b strings.Builder
		for i := range p.Input.Sources() {
			if v, ok := p.Input.ValueAt(i); ok {
				fmt.Fprintf(&b, "Dock #%d contains value: %s\n", i, FormatValue(v))
			}
		}
		p.text = b.String()
	} else {
		v, _ := p.Input.Value()
		p.text = FormatValue(v)
	}

	for _, fn := range p.listeners {
		fn(ctx, p.text)
	}
	return nil
}
