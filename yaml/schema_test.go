package yaml

import (
	"errors"
	"testing"
)

func validDefinition() *GraphDefinition {
	return &GraphDefinition{
		Name: "calc",
		Nodes: []NodeDefinition{
			{Name: "a", Type: "number"},
			{Name: "op", Type: "operation"},
		},
		Connections: []Connection{{From: "a.output", To: "op.a"}},
		Events: []Event{
			{Set: "a.output", Value: 2},
			{Trigger: "op", Action: "operator", Value: "*"},
		},
	}
}

func TestGraphDefinitionValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*GraphDefinition)
		ok     bool
	}{
		{"valid", func(*GraphDefinition) {}, true},
		{"missing name", func(gd *GraphDefinition) { gd.Name = "" }, false},
		{"no nodes", func(gd *GraphDefinition) { gd.Nodes = nil; gd.Connections = nil; gd.Events = nil }, false},
		{"negative budget", func(gd *GraphDefinition) { gd.MaxIterations = -1 }, false},
		{"duplicate node", func(gd *GraphDefinition) { gd.Nodes[1].Name = "a" }, false},
		{"node without type", func(gd *GraphDefinition) { gd.Nodes[0].Type = "" }, false},
		{"dotted node name", func(gd *GraphDefinition) { gd.Nodes[0].Name = "a.b" }, false},
		{"bad path", func(gd *GraphDefinition) { gd.Connections[0].From = "a" }, false},
		{"unknown node", func(gd *GraphDefinition) { gd.Connections[0].To = "x.a" }, false},
		{"empty event", func(gd *GraphDefinition) { gd.Events = append(gd.Events, Event{}) }, false},
		{"two kinds", func(gd *GraphDefinition) { gd.Events[0].Invalidate = "a.output" }, false},
		{"trigger without action", func(gd *GraphDefinition) { gd.Events[1].Action = "" }, false},
		{"unknown trigger", func(gd *GraphDefinition) { gd.Events[1].Trigger = "nope" }, false},
		{"disconnect", func(gd *GraphDefinition) {
			gd.Events = append(gd.Events, Event{Disconnect: &Connection{From: "a.output", To: "op.a"}})
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gd := validDefinition()
			tt.modify(gd)
			err := gd.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("Validate() error = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestEventKind(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Set: "a.b"}, EventSet},
		{Event{Invalidate: "a.b"}, EventInvalidate},
		{Event{Trigger: "a", Action: "x"}, EventTrigger},
		{Event{Connect: &Connection{}}, EventConnect},
		{Event{Disconnect: &Connection{}}, EventDisconnect},
		{Event{}, ""},
		{Event{Set: "a.b", Trigger: "a"}, ""},
	}
	for _, tt := range tests {
		if got := tt.event.Kind(); got != tt.want {
			t.Errorf("Kind(%+v) = %q, want %q", tt.event, got, tt.want)
		}
	}
}
