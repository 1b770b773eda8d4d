package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/dockflow"
	"github.com/agentstation/dockflow/builtin/script"
)

// ScriptConfig configures a scripted node.
type ScriptConfig struct {
	// Source is the Lua chunk run on every recompute.
	Source string
	// Inputs name the sinks; their values are passed to the script.
	Inputs []string
	// Outputs name the sources. A script with one output may return a
	// plain value; otherwise it returns a table keyed by output name.
	Outputs []string
	// RequireAll invalidates every output while any input is missing.
	RequireAll bool
	// Debug receives the output of print calls made by the script.
	Debug func(msg string)
}

// Script runs a Lua snippet to compute its sources from its sinks.
// Inputs and outputs are polymorphic.
type Script struct {
	*dockflow.Node
	cfg ScriptConfig
}

// NewScript creates a scripted node. The script is checked for syntax
// errors up front.
func NewScript(name string, cfg ScriptConfig, opts ...dockflow.Option) (*Script, error) {
	if err := script.Validate(cfg.Source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s := &Script{cfg: cfg}
	s.Node = dockflow.NewNode(name, s, opts...)
	for _, in := range cfg.Inputs {
		if err := s.AddSink(dockflow.NewSink[any](in)); err != nil {
			return nil, err
		}
	}
	for _, out := range cfg.Outputs {
		if err := s.AddSource(dockflow.NewSource[any](out)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Compute runs the script and distributes its result over the outputs.
// Outputs missing from the result are invalidated.
func (s *Script) Compute(ctx context.Context, _ []*dockflow.Sink) error {
	inputs := make(map[string]any, len(s.cfg.Inputs))
	for _, sink := range s.Sinks() {
		v, ok := sink.Value()
		if !ok {
			if s.cfg.RequireAll {
				return s.invalidateAll(ctx)
			}
			continue
		}
		inputs[sink.Name()] = v
	}

	var opts []script.EvalOption
	if s.cfg.Debug != nil {
		opts = append(opts, script.WithDebug(s.cfg.Debug))
	}
	result, err := script.Eval(ctx, s.cfg.Source, inputs, opts...)
	if err != nil {
		return err
	}

	sources := s.Sources()
	if len(sources) == 1 {
		if m, ok := result.(map[string]any); ok {
			if v, ok := m[sources[0].Name()]; ok {
				result = v
			}
		}
		return sources[0].Set(ctx, result)
	}

	m, _ := result.(map[string]any)
	for _, src := range sources {
		if err := src.Set(ctx, m[src.Name()]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Script) invalidateAll(ctx context.Context) error {
	for _, src := range s.Sources() {
		if err := src.Invalidate(ctx); err != nil {
			return err
		}
	}
	return nil
}
