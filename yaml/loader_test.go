package yaml

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/agentstation/dockflow"
)

// constant is a node with a single float64 source set from config.
func buildConstant(def *NodeDefinition) (dockflow.Element, error) {
	out := dockflow.NewSource[float64]("output")
	n := dockflow.NewNode(def.Name, nil)
	if err := n.AddSource(out); err != nil {
		return nil, err
	}
	if v, ok := def.Config["value"]; ok {
		coerced, err := Coerce(out.Type(), v)
		if err != nil {
			return nil, err
		}
		if err := out.Set(context.Background(), coerced); err != nil {
			return nil, err
		}
	}
	return n, nil
}

type doubler struct {
	in     *dockflow.Sink
	out    *dockflow.Source
	factor float64
}

func (d *doubler) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	v, ok := d.in.Value()
	if !ok {
		return d.out.Invalidate(ctx)
	}
	return d.out.Set(ctx, v.(float64)*d.factor)
}

func (d *doubler) Act(ctx context.Context, action string, arg any) error {
	if action != "factor" {
		return dockflow.ErrUnknownAction
	}
	d.factor = arg.(float64)
	d.in.Node().Recompute(ctx)
	return nil
}

func buildDoubler(def *NodeDefinition) (dockflow.Element, error) {
	d := &doubler{
		in:     dockflow.NewSink[float64]("input"),
		out:    dockflow.NewSource[float64]("output"),
		factor: 2,
	}
	n := dockflow.NewNode(def.Name, d)
	if err := n.AddSink(d.in); err != nil {
		return nil, err
	}
	if err := n.AddSource(d.out); err != nil {
		return nil, err
	}
	return n, nil
}

func newTestLoader() *Loader {
	l := NewLoader()
	l.RegisterNodeType("constant", buildConstant)
	l.RegisterNodeType("double", buildDoubler)
	return l
}

const doublerYAML = `
name: doubling
max_iterations: 7
nodes:
  - {name: c, type: constant, config: {value: 4}}
  - {name: d, type: double}
connections:
  - {from: c.output, to: d.input}
events:
  - {set: c.output, value: 10}
  - {trigger: d, action: factor, value: 3}
`

func TestLoadAndPlay(t *testing.T) {
	ctx := context.Background()
	l := newTestLoader()

	g, def, err := l.LoadString(ctx, doublerYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if g.Name() != "doubling" {
		t.Errorf("graph name = %q", g.Name())
	}
	if got := g.Values()["d.output"]; got != 8.0 {
		t.Errorf("d.output after load = %v, want 8", got)
	}

	if err := Play(ctx, g, def.Events); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if got := g.Values()["d.output"]; got != 30.0 {
		t.Errorf("d.output after events = %v, want 30", got)
	}

	if got := l.NodeTypes(); !reflect.DeepEqual(got, []string{"constant", "double"}) {
		t.Errorf("NodeTypes() = %v", got)
	}
}

func TestPlayConnectionEvents(t *testing.T) {
	ctx := context.Background()
	g, _, err := newTestLoader().LoadString(ctx, doublerYAML)
	if err != nil {
		t.Fatal(err)
	}

	events := []Event{
		{Disconnect: &Connection{From: "c.output", To: "d.input"}},
	}
	if err := Play(ctx, g, events); err != nil {
		t.Fatal(err)
	}
	if got := g.Values()["d.output"]; got != nil {
		t.Errorf("d.output after disconnect = %v, want nil", got)
	}

	events = []Event{
		{Connect: &Connection{From: "c.output", To: "d.input"}},
		{Invalidate: "c.output"},
	}
	if err := Play(ctx, g, events[:1]); err != nil {
		t.Fatal(err)
	}
	if got := g.Values()["d.output"]; got != 8.0 {
		t.Errorf("d.output after reconnect = %v, want 8", got)
	}
	if err := Play(ctx, g, events[1:]); err != nil {
		t.Fatal(err)
	}
	if got := g.Values()["d.output"]; got != nil {
		t.Errorf("d.output after invalidate = %v, want nil", got)
	}
}

func TestPlayErrors(t *testing.T) {
	ctx := context.Background()
	g, _, err := newTestLoader().LoadString(ctx, doublerYAML)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		event Event
		want  error
	}{
		{"unknown dock", Event{Set: "c.missing", Value: 1}, dockflow.ErrDockNotFound},
		{"wrong type", Event{Set: "c.output", Value: "text"}, dockflow.ErrTypeMismatch},
		{"unknown node", Event{Trigger: "x", Action: "go"}, dockflow.ErrNodeNotFound},
		{"no actions", Event{Trigger: "c", Action: "go"}, dockflow.ErrUnknownAction},
		{"not connected", Event{Disconnect: &Connection{From: "d.output", To: "d.input"}}, dockflow.ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Play(ctx, g, []Event{tt.event}); !errors.Is(err, tt.want) {
				t.Errorf("Play() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	l := newTestLoader()

	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown type", "name: x\nnodes: [{name: a, type: mystery}]\n", nil},
		{"unknown dock", "name: x\nnodes: [{name: a, type: constant}, {name: b, type: double}]\nconnections: [{from: a.nope, to: b.input}]\n", dockflow.ErrDockNotFound},
		{"self cycle", "name: x\nnodes: [{name: b, type: double}]\nconnections: [{from: b.output, to: b.input}]\n", dockflow.ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := l.LoadString(ctx, tt.yaml)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadAllowsCycles(t *testing.T) {
	yamlStr := "name: x\nallow_cycles: true\nnodes: [{name: b, type: double}]\nconnections: [{from: b.output, to: b.input}]\n"
	g, _, err := newTestLoader().LoadString(context.Background(), yamlStr)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if !g.AllowCycles() {
		t.Error("AllowCycles() = false")
	}
}

type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		in   any
		want any
	}{
		{"uint to float", dockflow.TypeOf[float64](), uint64(3), 3.0},
		{"negative int to float", dockflow.TypeOf[float64](), int64(-2), -2.0},
		{"float to int", dockflow.TypeOf[int](), 4.0, 4},
		{"string", dockflow.TypeOf[string](), "hi", "hi"},
		{"any keeps normalized", nil, uint64(7), 7.0},
		{"struct", dockflow.TypeOf[point](), map[string]any{"x": uint64(1), "y": 2.5}, point{X: 1, Y: 2.5}},
		{"nil", dockflow.TypeOf[float64](), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.typ, tt.in)
			if err != nil {
				t.Fatalf("Coerce() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := Coerce(dockflow.TypeOf[float64](), "five"); !errors.Is(err, dockflow.ErrTypeMismatch) {
		t.Errorf("Coerce(string to float64) error = %v, want ErrTypeMismatch", err)
	}
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"list":   []any{uint64(1), "a"},
		"nested": map[any]any{"k": int64(2)},
	}
	want := map[string]any{
		"list":   []any{1.0, "a"},
		"nested": map[string]any{"k": 2.0},
	}
	if got := Normalize(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}
