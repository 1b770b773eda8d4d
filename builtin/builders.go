package builtin

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin/script"
	"github.com/agentstation/dockflow/yaml"
)

// nodeOptions returns the options shared by every built-in node.
func nodeOptions(def *yaml.NodeDefinition, verbose bool) []dockflow.Option {
	if !verbose {
		return nil
	}
	return []dockflow.Option{dockflow.WithOnError(func(err error) {
		log.Printf("[%s] %v", def.Name, err)
	})}
}

func numberDock(name, desc string) DockInfo {
	return DockInfo{Name: name, Type: "number", Description: desc}
}

// NumberNodeBuilder builds number nodes.
type NumberNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *NumberNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "number",
		Category:    "calculator",
		Description: "Emits a number set from outside the graph",
		Sources:     []DockInfo{numberDock("output", "The current number")},
		Actions:     []ActionInfo{{Name: ActionSet, Description: "Emit a new number, clamped to min and max"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{"type": "number", "description": "Initial value", "default": 0},
				"min":   map[string]any{"type": "number", "description": "Lowest value emitted"},
				"max":   map[string]any{"type": "number", "description": "Highest value emitted"},
			},
			"additionalProperties": false,
		},
		Examples: []Example{
			{Name: "Spin button", Description: "A number between 0 and 100", Config: map[string]any{"value": 0, "min": 0, "max": 100}},
		},
		Since: "1.0.0",
	}
}

// Build creates a number node from a definition.
func (b *NumberNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	n := NewNumber(def.Name, floatConfig(def.Config, "value", 0), nodeOptions(def, b.Verbose)...)
	lo := floatConfig(def.Config, "min", math.Inf(-1))
	hi := floatConfig(def.Config, "max", math.Inf(1))
	if err := n.SetRange(context.Background(), lo, hi); err != nil {
		return nil, err
	}
	return n, nil
}

// StringNodeBuilder builds string nodes.
type StringNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *StringNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "string",
		Category:    "text",
		Description: "Emits a string set from outside the graph",
		Sources:     []DockInfo{{Name: "output", Type: "string", Description: "The current text"}},
		Actions:     []ActionInfo{{Name: ActionSet, Description: "Emit a new string"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{"type": "string", "description": "Initial text", "default": ""},
			},
			"additionalProperties": false,
		},
		Since: "1.0.0",
	}
}

// Build creates a string node from a definition.
func (b *StringNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewText(def.Name, stringConfig(def.Config, "value", ""), nodeOptions(def, b.Verbose)...), nil
}

// OperationNodeBuilder builds operation nodes.
type OperationNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *OperationNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "operation",
		Category:    "calculator",
		Description: "Applies +, -, * or / to two numbers",
		Sinks:       []DockInfo{numberDock("a", "Left operand"), numberDock("b", "Right operand")},
		Sources:     []DockInfo{numberDock("result", "Invalid when an operand is missing or on division by zero")},
		Actions:     []ActionInfo{{Name: ActionOperator, Description: "Select another operator"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operator": map[string]any{
					"type":        "string",
					"description": "Operator applied to a and b",
					"enum":        []any{"+", "-", "*", "/"},
				},
			},
			"additionalProperties": false,
		},
		Examples: []Example{
			{Name: "Multiply", Description: "a * b", Config: map[string]any{"operator": "*"}},
		},
		Since: "1.0.0",
	}
}

// Build creates an operation node from a definition.
func (b *OperationNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	o, err := NewOperation(def.Name, stringConfig(def.Config, "operator", ""), nodeOptions(def, b.Verbose)...)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// AddNodeBuilder builds add nodes.
type AddNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *AddNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "add",
		Category:    "calculator",
		Description: "Sums every number connected to its summands sink",
		Sinks:       []DockInfo{numberDock("summands", "Accepts several sources")},
		Sources:     []DockInfo{numberDock("result", "0 without summands, invalid while any summand is")},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"max_summands": map[string]any{
					"type":        "integer",
					"description": "Number of sources the summands sink accepts",
					"minimum":     1,
					"default":     DefaultMaxSummands,
				},
			},
			"additionalProperties": false,
		},
		Since: "1.0.0",
	}
}

// Build creates an add node from a definition.
func (b *AddNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	a, err := NewAdd(def.Name, intConfig(def.Config, "max_summands", DefaultMaxSummands), nodeOptions(def, b.Verbose)...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ConcatNodeBuilder builds concat nodes.
type ConcatNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *ConcatNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "concat",
		Category:    "text",
		Description: "Joins two strings; a missing one counts as empty",
		Sinks: []DockInfo{
			{Name: "a", Type: "string", Description: "First part"},
			{Name: "b", Type: "string", Description: "Second part"},
		},
		Sources:      []DockInfo{{Name: "output", Type: "string", Description: "a followed by b"}},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a concat node from a definition.
func (b *ConcatNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewConcat(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// ConvertNodeBuilder builds convert nodes.
type ConvertNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *ConvertNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:         "convert",
		Category:     "text",
		Description:  "Renders a number as a string",
		Sinks:        []DockInfo{numberDock("input", "Number to render")},
		Sources:      []DockInfo{{Name: "output", Type: "string", Description: "The rendered number"}},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a convert node from a definition.
func (b *ConvertNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewConvert(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// PrintNodeBuilder builds print nodes.
type PrintNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *PrintNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "print",
		Category:    "display",
		Description: "Renders its input as text; with several sources, one line per valid source",
		Sinks:       []DockInfo{{Name: "input", Type: "configured", Description: "Value to display"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type":        "string",
					"description": "Input type",
					"enum":        []any{"number", "string", "bool", "point", "any"},
					"default":     "any",
				},
				"max_sources": map[string]any{
					"type":        "integer",
					"description": "Number of sources the input accepts",
					"minimum":     1,
					"default":     1,
				},
			},
			"additionalProperties": false,
		},
		Examples: []Example{
			{Name: "Multi-sink report", Description: "Lists up to ten numbers", Config: map[string]any{"type": "number", "max_sources": 10}},
		},
		Since: "1.0.0",
	}
}

// Build creates a print node from a definition.
func (b *PrintNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	t, err := TypeByName(stringConfig(def.Config, "type", "any"))
	if err != nil {
		return nil, err
	}
	p, err := NewPrint(def.Name, t, intConfig(def.Config, "max_sources", 1), nodeOptions(def, b.Verbose)...)
	if err != nil {
		return nil, err
	}
	if b.Verbose {
		p.OnPrint(func(_ context.Context, text string) {
			log.Printf("[%s] %q", def.Name, text)
		})
	}
	return p, nil
}

// StarterNodeBuilder builds starter nodes.
type StarterNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *StarterNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:         "starter",
		Category:     "cycle",
		Description:  "Emits 1 when started",
		Sources:      []DockInfo{numberDock("emitter", "Invalid until started")},
		Actions:      []ActionInfo{{Name: ActionStart, Description: "Emit 1"}},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a starter node from a definition.
func (b *StarterNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewStarter(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// CounterNodeBuilder builds counter nodes.
type CounterNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *CounterNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "counter",
		Category:    "cycle",
		Description: "Counts up to a target while enable is 1; feed counted back into clock to count by itself",
		Sinks:       []DockInfo{numberDock("enable", "Counting happens while this is 1"), numberDock("clock", "Each change advances the count")},
		Sources:     []DockInfo{numberDock("result", "The count"), numberDock("counted", "Set on every step below the target")},
		Actions:     []ActionInfo{{Name: ActionReset, Description: "Start counting from zero"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target": map[string]any{"type": "number", "description": "Count to stop at", "default": DefaultTarget},
			},
			"additionalProperties": false,
		},
		Since: "1.0.0",
	}
}

// Build creates a counter node from a definition.
func (b *CounterNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewCounter(def.Name, floatConfig(def.Config, "target", DefaultTarget), nodeOptions(def, b.Verbose)...), nil
}

// PointNodeBuilder builds point nodes.
type PointNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *PointNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:         "point",
		Category:     "object",
		Description:  "Builds a point from two coordinates",
		Sinks:        []DockInfo{numberDock("x", "X coordinate"), numberDock("y", "Y coordinate")},
		Sources:      []DockInfo{{Name: "result", Type: "point", Description: "Invalid unless both coordinates are valid"}},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a point node from a definition.
func (b *PointNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewPoint(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// SplitNodeBuilder builds split nodes.
type SplitNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *SplitNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:         "split",
		Category:     "object",
		Description:  "Breaks a point into its coordinates",
		Sinks:        []DockInfo{{Name: "point", Type: "point", Description: "Point to split"}},
		Sources:      []DockInfo{numberDock("x", "X coordinate"), numberDock("y", "Y coordinate")},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a split node from a definition.
func (b *SplitNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewSplit(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// ParseJSONNodeBuilder builds parse_json nodes.
type ParseJSONNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *ParseJSONNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:         "parse_json",
		Category:     "object",
		Description:  "Decodes JSON text into objects, lists and numbers",
		Sinks:        []DockInfo{{Name: "input", Type: "string", Description: "JSON text"}},
		Sources:      []DockInfo{{Name: "output", Type: "any", Description: "Invalid when the text is not JSON"}},
		ConfigSchema: map[string]any{"type": "object", "additionalProperties": false},
		Since:        "1.0.0",
	}
}

// Build creates a parse_json node from a definition.
func (b *ParseJSONNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	return NewParseJSON(def.Name, nodeOptions(def, b.Verbose)...), nil
}

// ExtractNodeBuilder builds extract nodes.
type ExtractNodeBuilder struct {
	Verbose bool
}

// Metadata returns the node metadata.
func (b *ExtractNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "extract",
		Category:    "object",
		Description: "Selects part of an object with a JSONPath expression",
		Sinks:       []DockInfo{{Name: "input", Type: "any", Description: "Object to search"}},
		Sources:     []DockInfo{{Name: "output", Type: "any", Description: "First match, or all matches with multiple"}},
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"path"},
			"properties": map[string]any{
				"path":     map[string]any{"type": "string", "description": "JSONPath expression"},
				"multiple": map[string]any{"type": "boolean", "description": "Emit every match as a list", "default": false},
			},
			"additionalProperties": false,
		},
		Examples: []Example{
			{Name: "Field", Description: "Pick the user name", Config: map[string]any{"path": "$.user.name"}},
			{Name: "All prices", Description: "Collect every price", Config: map[string]any{"path": "$.items[*].price", "multiple": true}},
		},
		Since: "1.0.0",
	}
}

// Build creates an extract node from a definition.
func (b *ExtractNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	e, err := NewExtract(def.Name,
		stringConfig(def.Config, "path", ""),
		boolConfig(def.Config, "multiple", false),
		nodeOptions(def, b.Verbose)...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ScriptNodeBuilder builds Lua scripted nodes.
type ScriptNodeBuilder struct {
	Verbose bool
	Scripts *script.Manager
}

// Metadata returns the node metadata.
func (b *ScriptNodeBuilder) Metadata() NodeMetadata {
	return NodeMetadata{
		Type:        "script",
		Category:    "script",
		Description: "Computes its outputs with a sandboxed Lua script",
		Sinks:       []DockInfo{{Name: "<inputs>", Type: "any", Description: "One sink per configured input"}},
		Sources:     []DockInfo{{Name: "<outputs>", Type: "any", Description: "One source per configured output"}},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"script":      map[string]any{"type": "string", "description": "Inline Lua source"},
				"script_name": map[string]any{"type": "string", "description": "Name of a script in the scripts directory"},
				"inputs":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"outputs":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
				"require_all": map[string]any{"type": "boolean", "default": true},
			},
			"required":             []any{"outputs"},
			"oneOf":                []any{map[string]any{"required": []any{"script"}}, map[string]any{"required": []any{"script_name"}}},
			"additionalProperties": false,
		},
		Examples: []Example{
			{
				Name:        "Hypotenuse",
				Description: "Length of a right triangle's long side",
				Config: map[string]any{
					"script":  "return math.sqrt(a * a + b * b)",
					"inputs":  []any{"a", "b"},
					"outputs": []any{"length"},
				},
			},
		},
		Since: "1.0.0",
	}
}

// Build creates a script node from a definition.
func (b *ScriptNodeBuilder) Build(def *yaml.NodeDefinition) (dockflow.Element, error) {
	source := stringConfig(def.Config, "script", "")
	if name := stringConfig(def.Config, "script_name", ""); name != "" {
		if b.Scripts == nil {
			return nil, fmt.Errorf("%w: no scripts directory for script %q", ErrInvalidConfig, name)
		}
		s, ok := b.Scripts.GetScript(name)
		if !ok {
			return nil, fmt.Errorf("%w: script %q not found", ErrInvalidConfig, name)
		}
		source = s.Content
	}

	inputs, err := stringsConfig(def.Config, "inputs")
	if err != nil {
		return nil, err
	}
	outputs, err := stringsConfig(def.Config, "outputs")
	if err != nil {
		return nil, err
	}

	cfg := ScriptConfig{
		Source:     source,
		Inputs:     inputs,
		Outputs:    outputs,
		RequireAll: boolConfig(def.Config, "require_all", true),
	}
	if b.Verbose {
		cfg.Debug = func(msg string) {
			log.Printf("[%s] %s", def.Name, msg)
		}
	}
	s, err := NewScript(def.Name, cfg, nodeOptions(def, b.Verbose)...)
	if err != nil {
		return nil, err
	}
	return s, nil
}
