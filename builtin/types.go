package builtin

// NodeMetadata describes a node type.
type NodeMetadata struct {
	Type         string         `json:"type" yaml:"type"`
	Category     string         `json:"category" yaml:"category"`
	Description  string         `json:"description" yaml:"description"`
	Sinks        []DockInfo     `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	Sources      []DockInfo     `json:"sources,omitempty" yaml:"sources,omitempty"`
	Actions      []ActionInfo   `json:"actions,omitempty" yaml:"actions,omitempty"`
	ConfigSchema map[string]any `json:"configSchema" yaml:"configSchema"`
	Examples     []Example      `json:"examples,omitempty" yaml:"examples,omitempty"`
	Since        string         `json:"since,omitempty" yaml:"since,omitempty"`
}

// DockInfo describes a dock created by a node type.
type DockInfo struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ActionInfo describes an action accepted by a node type.
type ActionInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Example shows how to use a node.
type Example struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Point is the value carried by point docks.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}
