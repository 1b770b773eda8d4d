package builtin

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/yaml"
)

// PointNode builds a Point from its x and y sinks.
type PointNode struct {
	*dockflow.Node
	X, Y   *dockflow.Sink
	Result *dockflow.Source
}

// NewPoint creates a point constructor node.
func NewPoint(name string, opts ...dockflow.Option) *PointNode {
	p := &PointNode{
		X:      dockflow.NewSink[float64]("x"),
		Y:      dockflow.NewSink[float64]("y"),
		Result: dockflow.NewSource[Point]("result"),
	}
	p.Node = dockflow.NewNode(name, p, opts...)
	_ = p.AddSink(p.X)
	_ = p.AddSink(p.Y)
	_ = p.AddSource(p.Result)
	return p
}

// Compute builds the point, invalid unless both coordinates are valid.
func (p *PointNode) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	x, okX := p.X.Value()
	y, okY := p.Y.Value()
	if !okX || !okY {
		return p.Result.Invalidate(ctx)
	}
	return p.Result.Set(ctx, Point{X: x.(float64), Y: y.(float64)})
}

// Split breaks a Point into its coordinates.
type Split struct {
	*dockflow.Node
	Point *dockflow.Sink
	X, Y  *dockflow.Source
}

// NewSplit creates a point splitter node.
func NewSplit(name string, opts ...dockflow.Option) *Split {
	s := &Split{
		Point: dockflow.NewSink[Point]("point"),
		X:     dockflow.NewSource[float64]("x"),
		Y:     dockflow.NewSource[float64]("y"),
	}
	s.Node = dockflow.NewNode(name, s, opts...)
	_ = s.AddSink(s.Point)
	_ = s.AddSource(s.X)
	_ = s.AddSource(s.Y)
	return s
}

// Compute emits the coordinates or invalidates both.
func (s *Split) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	v, ok := s.Point.Value()
	if !ok {
		_ = s.X.Invalidate(ctx)
		return s.Y.Invalidate(ctx)
	}
	p := v.(Point)
	if err := s.X.Set(ctx, p.X); err != nil {
		return err
	}
	return s.Y.Set(ctx, p.Y)
}

// ParseJSON decodes the JSON text on its input. Integers come out as
// float64 so number docks accept them.
type ParseJSON struct {
	*dockflow.Node
	Input  *dockflow.Sink
	Output *dockflow.Source
}

// NewParseJSON creates a JSON parsing node.
func NewParseJSON(name string, opts ...dockflow.Option) *ParseJSON {
	p := &ParseJSON{
		Input:  dockflow.NewSink[string]("input"),
		Output: dockflow.NewSource[any]("output"),
	}
	p.Node = dockflow.NewNode(name, p, opts...)
	_ = p.AddSink(p.Input)
	_ = p.AddSource(p.Output)
	return p
}

// Compute parses the input. Malformed JSON invalidates the output.
func (p *ParseJSON) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	v, ok := p.Input.Value()
	if !ok {
		return p.Output.Invalidate(ctx)
	}
	data, err := oj.ParseString(v.(string))
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return p.Output.Set(ctx, yaml.Normalize(data))
}

// Extract evaluates a JSONPath expression against its input.
type Extract struct {
	*dockflow.Node
	Input  *dockflow.Sink
	Output *dockflow.Source

	path     jp.Expr
	multiple bool
}

// NewExtract creates an extraction node. With multiple set the output is
// the list of all matches; otherwise it is the first match and invalid
// when nothing matches.
func NewExtract(name, path string, multiple bool, opts ...dockflow.Option) (*Extract, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("%w: path %q: %v", ErrInvalidConfig, path, err)
	}
	e := &Extract{
		Input:    dockflow.NewSink[any]("input"),
		Output:   dockflow.NewSource[any]("output"),
		path:     expr,
		multiple: multiple,
	}
	e.Node = dockflow.NewNode(name, e, opts...)
	_ = e.AddSink(e.Input)
	_ = e.AddSource(e.Output)
	return e, nil
}

// Path returns the JSONPath expression.
func (e *Extract) Path() string { return e.path.String() }

// Compute applies the path to the input.
func (e *Extract) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	v, ok := e.Input.Value()
	if !ok {
		return e.Output.Invalidate(ctx)
	}
	results := e.path.Get(v)
	if e.multiple {
		if results == nil {
			results = []any{}
		}
		return e.Output.Set(ctx, results)
	}
	if len(results) == 0 {
		return e.Output.Invalidate(ctx)
	}
	return e.Output.Set(ctx, results[0])
}
