package builtin

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/agentstation/dockflow"
)

// Dock value types by name, as used in node configuration.
var dockTypes = map[string]reflect.Type{
	"number": dockflow.TypeOf[float64](),
	"string": dockflow.TypeOf[string](),
	"bool":   dockflow.TypeOf[bool](),
	"point":  dockflow.TypeOf[Point](),
	"any":    nil,
}

// TypeByName returns the dock type for a configured type name.
func TypeByName(name string) (reflect.Type, error) {
	if name == "" {
		return nil, nil
	}
	t, ok := dockTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown dock type %q", ErrInvalidConfig, name)
	}
	return t, nil
}

// toFloat accepts any numeric value.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// FormatValue renders a dock value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case Point:
		return "(" + FormatValue(val.X) + ", " + FormatValue(val.Y) + ")"
	default:
		return fmt.Sprint(val)
	}
}
