package script

import (
	"testing"

	"github.com/Shopify/go-lua"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func TestPushPullValue(t *testing.T) {
	l := lua.NewState()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int becomes float64", 42, 42.0},
		{"float", 3.5, 3.5},
		{"string", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pushValue(l, tt.value)
			got := pullValue(l, -1)
			l.Pop(1)
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestPushPullTables(t *testing.T) {
	l := lua.NewState()

	pushValue(l, []any{1.0, "two", 3.0})
	arr, ok := pullValue(l, -1).([]any)
	l.Pop(1)
	if !ok || len(arr) != 3 || arr[1] != "two" {
		t.Errorf("array round trip = %v", arr)
	}

	pushValue(l, map[string]any{"key": "value", "num": 123.0})
	m, ok := pullValue(l, -1).(map[string]any)
	l.Pop(1)
	if !ok || m["key"] != "value" || m["num"] != 123.0 {
		t.Errorf("map round trip = %v", m)
	}

	pushValue(l, point{X: 1, Y: 2})
	m, ok = pullValue(l, -1).(map[string]any)
	l.Pop(1)
	if !ok || m["x"] != 1.0 || m["y"] != 2.0 {
		t.Errorf("struct = %v, want map with x and y", m)
	}

	if l.Top() != 0 {
		t.Errorf("stack not balanced: top = %d", l.Top())
	}
}
