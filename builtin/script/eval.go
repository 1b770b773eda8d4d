// Package script runs Lua snippets for scripted nodes.
//
// A script sees each input value as a global of the same name and as a
// field of the inputs table. When the chunk defines a compute function it
// is called with the inputs table; otherwise the chunk's own return value
// is used.
//
//	-- @name: hypot
//	function compute(inputs)
//	  return { length = math.sqrt(inputs.x * inputs.x + inputs.y * inputs.y) }
//	end
//
// Only the base, string, table and math libraries are loaded. Helper
// functions json_encode, json_decode, str_trim, str_split, str_contains and
// type_of are always available.
package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
)

var (
	// ErrSyntax is returned for scripts that fail to compile.
	ErrSyntax = errors.New("script: syntax error")

	// ErrRuntime is returned when a script raises an error.
	ErrRuntime = errors.New("script: runtime error")
)

// evalOptions holds configuration for Eval.
type evalOptions struct {
	debug func(msg string)
}

// EvalOption configures Eval.
type EvalOption func(*evalOptions)

// WithDebug enables print inside scripts, routing its output to fn.
func WithDebug(fn func(msg string)) EvalOption {
	return func(o *evalOptions) {
		o.debug = fn
	}
}

// Eval runs source in a fresh sandbox with the given inputs and returns
// the script result converted to Go values. Numbers come back as float64,
// array-like tables as []any and other tables as map[string]any.
func Eval(ctx context.Context, source string, inputs map[string]any, opts ...EvalOption) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var o evalOptions
	for _, opt := range opts {
		opt(&o)
	}

	l := lua.NewState()
	setupSandbox(l)
	if o.debug != nil {
		debug := o.debug
		l.Register("print", func(l *lua.State) int {
			n := l.Top()
			parts := make([]string, 0, n)
			for i := 1; i <= n; i++ {
				s, _ := lua.ToStringMeta(l, i)
				l.Pop(1)
				parts = append(parts, s)
			}
			debug(strings.Join(parts, "\t"))
			return 0
		})
	}

	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pushValue(l, inputs[name])
		l.SetGlobal(name)
	}
	pushValue(l, inputs)
	l.SetGlobal("inputs")

	if err := lua.LoadString(l, source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := l.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	l.Global("compute")
	if l.TypeOf(-1) == lua.TypeFunction {
		pushValue(l, inputs)
		if err := l.ProtectedCall(1, 1, 0); err != nil {
			return nil, fmt.Errorf("%w: compute: %v", ErrRuntime, err)
		}
		result := pullValue(l, -1)
		l.Pop(1)
		return result, nil
	}
	l.Pop(1)

	if l.Top() > 0 {
		result := pullValue(l, -1)
		l.SetTop(0)
		return result, nil
	}
	return nil, nil
}
