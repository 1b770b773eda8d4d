package yaml

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	goyaml "github.com/goccy/go-yaml"

	"github.com/agentstation/dockflow"
)

// NodeBuilder builds a node from its definition.
type NodeBuilder func(def *NodeDefinition) (dockflow.Element, error)

// Loader builds graphs from definitions.
type Loader struct {
	parser   *Parser
	builders map[string]NodeBuilder
}

// NewLoader creates a loader without any node types.
func NewLoader() *Loader {
	return &Loader{
		parser:   NewParser(),
		builders: make(map[string]NodeBuilder),
	}
}

// RegisterNodeType registers a builder for a node type.
func (l *Loader) RegisterNodeType(nodeType string, builder NodeBuilder) {
	l.builders[nodeType] = builder
}

// NodeTypes returns the registered node types in sorted order.
func (l *Loader) NodeTypes() []string {
	types := make([]string, 0, len(l.builders))
	for t := range l.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// LoadFile parses, validates and builds the graph defined in filename.
// Events are not replayed.
func (l *Loader) LoadFile(ctx context.Context, filename string, opts ...dockflow.GraphOption) (*dockflow.Graph, *GraphDefinition, error) {
	def, err := l.parser.ParseFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("parse file: %w", err)
	}
	g, err := l.LoadDefinition(ctx, def, opts...)
	if err != nil {
		return nil, nil, err
	}
	return g, def, nil
}

// LoadString parses, validates and builds the graph defined in s.
// Events are not replayed.
func (l *Loader) LoadString(ctx context.Context, s string, opts ...dockflow.GraphOption) (*dockflow.Graph, *GraphDefinition, error) {
	def, err := l.parser.ParseString(s)
	if err != nil {
		return nil, nil, fmt.Errorf("parse string: %w", err)
	}
	g, err := l.LoadDefinition(ctx, def, opts...)
	if err != nil {
		return nil, nil, err
	}
	return g, def, nil
}

// LoadDefinition builds the nodes of def and connects them. The cycle
// settings of the definition come first so opts can override them.
func (l *Loader) LoadDefinition(ctx context.Context, def *GraphDefinition, opts ...dockflow.GraphOption) (*dockflow.Graph, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	graphOpts := []dockflow.GraphOption{dockflow.WithAllowCycles(def.AllowCycles)}
	if def.MaxIterations > 0 {
		graphOpts = append(graphOpts, dockflow.WithMaxIterations(def.MaxIterations))
	}
	g := dockflow.NewGraph(def.Name, append(graphOpts, opts...)...)

	for i := range def.Nodes {
		nodeDef := &def.Nodes[i]
		builder, ok := l.builders[nodeDef.Type]
		if !ok {
			return nil, fmt.Errorf("node %s: unknown node type %q", nodeDef.Name, nodeDef.Type)
		}
		elem, err := builder(nodeDef)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nodeDef.Name, err)
		}
		if err := g.Add(elem); err != nil {
			return nil, err
		}
	}

	for _, conn := range def.Connections {
		if err := connect(ctx, g, conn); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func connect(ctx context.Context, g *dockflow.Graph, conn Connection) error {
	src, err := g.Source(conn.From)
	if err != nil {
		return fmt.Errorf("connection %s: %w", conn, err)
	}
	sink, err := g.Sink(conn.To)
	if err != nil {
		return fmt.Errorf("connection %s: %w", conn, err)
	}
	if err := g.Connect(ctx, src, sink); err != nil {
		return fmt.Errorf("connection %s: %w", conn, err)
	}
	return nil
}

// Play replays events against g in order and stops at the first failure.
func Play(ctx context.Context, g *dockflow.Graph, events []Event) error {
	for i := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := playEvent(ctx, g, &events[i]); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

func playEvent(ctx context.Context, g *dockflow.Graph, e *Event) error {
	switch e.Kind() {
	case EventSet:
		src, err := g.Source(e.Set)
		if err != nil {
			return err
		}
		v, err := Coerce(src.Type(), e.Value)
		if err != nil {
			return fmt.Errorf("set %s: %w", e.Set, err)
		}
		return src.Set(ctx, v)
	case EventInvalidate:
		src, err := g.Source(e.Invalidate)
		if err != nil {
			return err
		}
		return src.Invalidate(ctx)
	case EventTrigger:
		return g.Act(ctx, e.Trigger, e.Action, Normalize(e.Value))
	case EventConnect:
		return connect(ctx, g, *e.Connect)
	case EventDisconnect:
		src, err := g.Source(e.Disconnect.From)
		if err != nil {
			return err
		}
		sink, err := g.Sink(e.Disconnect.To)
		if err != nil {
			return err
		}
		return g.Disconnect(ctx, src, sink)
	default:
		return fmt.Errorf("%w: event has no single kind", ErrInvalidDefinition)
	}
}

// Normalize turns decoded YAML numbers into float64, the number type of
// the built-in docks, and map keys into strings.
func Normalize(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	default:
		return v
	}
}

// Coerce converts a decoded YAML value to the dock type t. Numbers convert
// between numeric kinds; maps decode into struct types. A nil t accepts
// the normalized value as is.
func Coerce(t reflect.Type, v any) (any, error) {
	v = Normalize(v)
	if v == nil || t == nil {
		return v, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return rv.Convert(t).Interface(), nil
	}

	// Structured values take a round trip through YAML.
	data, err := goyaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dockflow.ErrTypeMismatch, err)
	}
	target := reflect.New(t)
	if err := goyaml.UnmarshalWithOptions(data, target.Interface(), goyaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: cannot use %v as %s", dockflow.ErrTypeMismatch, v, dockflow.TypeName(t))
	}
	return target.Elem().Interface(), nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
