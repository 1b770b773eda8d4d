package builtin

import (
	"fmt"
	"sort"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin/script"
	"github.com/agentstation/dockflow/yaml"
)

// NodeBuilder creates nodes and provides metadata.
type NodeBuilder interface {
	Metadata() NodeMetadata
	Build(def *yaml.NodeDefinition) (dockflow.Element, error)
}

// Registry manages all built-in nodes.
type Registry struct {
	builders map[string]NodeBuilder
}

// NewRegistry creates a new node registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]NodeBuilder),
	}
}

// Register adds a node builder.
func (r *Registry) Register(builder NodeBuilder) {
	meta := builder.Metadata()
	r.builders[meta.Type] = builder
}

// Get returns a builder by type.
func (r *Registry) Get(nodeType string) (NodeBuilder, bool) {
	builder, exists := r.builders[nodeType]
	return builder, exists
}

// All returns all registered builders.
func (r *Registry) All() map[string]NodeBuilder {
	return r.builders
}

// Types returns the registered node types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// registryOptions holds configuration for RegisterAll.
type registryOptions struct {
	scripts *script.Manager
}

// RegistryOption configures RegisterAll.
type RegistryOption func(*registryOptions)

// WithScripts makes the scripts of m available to script nodes through
// their script_name setting.
func WithScripts(m *script.Manager) RegistryOption {
	return func(o *registryOptions) {
		o.scripts = m
	}
}

// RegisterAll registers all built-in nodes with a YAML loader.
func RegisterAll(loader *yaml.Loader, verbose bool, opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	registry := NewRegistry()

	// Calculator nodes
	registry.Register(&NumberNodeBuilder{Verbose: verbose})
	registry.Register(&OperationNodeBuilder{Verbose: verbose})
	registry.Register(&AddNodeBuilder{Verbose: verbose})
	registry.Register(&PrintNodeBuilder{Verbose: verbose})

	// Text nodes
	registry.Register(&StringNodeBuilder{Verbose: verbose})
	registry.Register(&ConcatNodeBuilder{Verbose: verbose})
	registry.Register(&ConvertNodeBuilder{Verbose: verbose})

	// Cycle nodes
	registry.Register(&StarterNodeBuilder{Verbose: verbose})
	registry.Register(&CounterNodeBuilder{Verbose: verbose})

	// Object nodes
	registry.Register(&PointNodeBuilder{Verbose: verbose})
	registry.Register(&SplitNodeBuilder{Verbose: verbose})
	registry.Register(&ParseJSONNodeBuilder{Verbose: verbose})
	registry.Register(&ExtractNodeBuilder{Verbose: verbose})

	// Script nodes
	registry.Register(&ScriptNodeBuilder{Verbose: verbose, Scripts: o.scripts})

	if loader != nil {
		for _, builder := range registry.All() {
			meta := builder.Metadata()
			loader.RegisterNodeType(meta.Type, createValidatingBuilder(builder))
		}
	}

	return registry
}

// createValidatingBuilder wraps a builder with config validation.
func createValidatingBuilder(builder NodeBuilder) yaml.NodeBuilder {
	return func(def *yaml.NodeDefinition) (dockflow.Element, error) {
		meta := builder.Metadata()
		if err := ValidateNodeConfig(&meta, def.Config); err != nil {
			return nil, fmt.Errorf("config validation failed for node '%s': %w", def.Name, err)
		}

		return builder.Build(def)
	}
}
