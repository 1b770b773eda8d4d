// Package yaml provides YAML graph definitions for dockflow.
//
// A definition names the nodes of a graph, the connections between their
// docks and an optional list of events to replay once the graph is built:
//
//	name: calculator
//	nodes:
//	  - name: a
//	    type: number
//	    config: {value: 3}
//	  - name: op
//	    type: operation
//	    config: {operator: "+"}
//	connections:
//	  - {from: a.output, to: op.a}
//	events:
//	  - {set: a.output, value: 5}
//	  - {trigger: op, action: operator, value: "*"}
package yaml

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition is returned for definitions that fail validation.
var ErrInvalidDefinition = errors.New("yaml: invalid definition")

// GraphDefinition represents a complete graph defined in YAML.
type GraphDefinition struct {
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	Version       string           `yaml:"version,omitempty" json:"version,omitempty"`
	AllowCycles   bool             `yaml:"allow_cycles,omitempty" json:"allow_cycles,omitempty"`
	MaxIterations int              `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	Nodes         []NodeDefinition `yaml:"nodes" json:"nodes"`
	Connections   []Connection     `yaml:"connections,omitempty" json:"connections,omitempty"`
	Events        []Event          `yaml:"events,omitempty" json:"events,omitempty"`
}

// NodeDefinition represents a node in YAML format.
type NodeDefinition struct {
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Config      map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Connection links a source path to a sink path, both written "node.dock".
type Connection struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// String returns "from -> to".
func (c Connection) String() string { return c.From + " -> " + c.To }

// Event is one step replayed against a built graph. Exactly one of Set,
// Invalidate, Trigger, Connect or Disconnect is given.
type Event struct {
	Set        string      `yaml:"set,omitempty" json:"set,omitempty"`
	Invalidate string      `yaml:"invalidate,omitempty" json:"invalidate,omitempty"`
	Trigger    string      `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Action     string      `yaml:"action,omitempty" json:"action,omitempty"`
	Value      any         `yaml:"value,omitempty" json:"value,omitempty"`
	Connect    *Connection `yaml:"connect,omitempty" json:"connect,omitempty"`
	Disconnect *Connection `yaml:"disconnect,omitempty" json:"disconnect,omitempty"`
}

// Event kinds.
const (
	EventSet        = "set"
	EventInvalidate = "invalidate"
	EventTrigger    = "trigger"
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// Kind returns the event kind, or "" when the event names none or several.
func (e *Event) Kind() string {
	var kinds []string
	if e.Set != "" {
		kinds = append(kinds, EventSet)
	}
	if e.Invalidate != "" {
		kinds = append(kinds, EventInvalidate)
	}
	if e.Trigger != "" {
		kinds = append(kinds, EventTrigger)
	}
	if e.Connect != nil {
		kinds = append(kinds, EventConnect)
	}
	if e.Disconnect != nil {
		kinds = append(kinds, EventDisconnect)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// SplitPath splits "node.dock" into its parts.
func SplitPath(path string) (node, dock string, err error) {
	node, dock, ok := strings.Cut(path, ".")
	if !ok || node == "" || dock == "" {
		return "", "", fmt.Errorf("%w: dock path %q must be node.dock", ErrInvalidDefinition, path)
	}
	return node, dock, nil
}

// Validate checks that the definition is complete and that every path
// refers to a defined node. Dock names are checked when the graph is
// built.
func (gd *GraphDefinition) Validate() error {
	if gd.Name == "" {
		return fmt.Errorf("%w: graph name is required", ErrInvalidDefinition)
	}
	if len(gd.Nodes) == 0 {
		return fmt.Errorf("%w: at least one node is required", ErrInvalidDefinition)
	}
	if gd.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations cannot be negative", ErrInvalidDefinition)
	}

	nodeMap := make(map[string]bool)
	for _, node := range gd.Nodes {
		if err := node.Validate(); err != nil {
			return err
		}
		if nodeMap[node.Name] {
			return fmt.Errorf("%w: duplicate node %s", ErrInvalidDefinition, node.Name)
		}
		nodeMap[node.Name] = true
	}

	checkPath := func(path string) error {
		node, _, err := SplitPath(path)
		if err != nil {
			return err
		}
		if !nodeMap[node] {
			return fmt.Errorf("%w: node %s not found", ErrInvalidDefinition, node)
		}
		return nil
	}
	checkConnection := func(c *Connection) error {
		if err := checkPath(c.From); err != nil {
			return fmt.Errorf("connection %s: %w", c, err)
		}
		if err := checkPath(c.To); err != nil {
			return fmt.Errorf("connection %s: %w", c, err)
		}
		return nil
	}

	for i := range gd.Connections {
		if err := checkConnection(&gd.Connections[i]); err != nil {
			return err
		}
	}

	for i := range gd.Events {
		e := &gd.Events[i]
		var err error
		switch e.Kind() {
		case EventSet:
			err = checkPath(e.Set)
		case EventInvalidate:
			err = checkPath(e.Invalidate)
		case EventTrigger:
			if !nodeMap[e.Trigger] {
				err = fmt.Errorf("%w: node %s not found", ErrInvalidDefinition, e.Trigger)
			} else if e.Action == "" {
				err = fmt.Errorf("%w: trigger needs an action", ErrInvalidDefinition)
			}
		case EventConnect:
			err = checkConnection(e.Connect)
		case EventDisconnect:
			err = checkConnection(e.Disconnect)
		default:
			err = fmt.Errorf("%w: event must have exactly one of set, invalidate, trigger, connect, disconnect", ErrInvalidDefinition)
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks if the node definition is valid.
func (nd *NodeDefinition) Validate() error {
	if nd.Name == "" {
		return fmt.Errorf("%w: node name is required", ErrInvalidDefinition)
	}
	if strings.Contains(nd.Name, ".") {
		return fmt.Errorf("%w: node name %q cannot contain '.'", ErrInvalidDefinition, nd.Name)
	}
	if nd.Type == "" {
		return fmt.Errorf("%w: node type is required for node %s", ErrInvalidDefinition, nd.Name)
	}
	return nil
}
