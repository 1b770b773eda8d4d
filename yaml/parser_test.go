package yaml

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const calculatorYAML = `
name: calculator
description: Two numbers and an operation
allow_cycles: false
max_iterations: 50
nodes:
  - name: a
    type: number
    config:
      value: 3
  - name: op
    type: operation
    config: {operator: "+"}
connections:
  - {from: a.output, to: op.a}
events:
  - {set: a.output, value: 5}
  - {invalidate: a.output}
  - {trigger: op, action: operator, value: "*"}
  - disconnect: {from: a.output, to: op.a}
`

func TestParseString(t *testing.T) {
	gd, err := NewParser().ParseString(calculatorYAML)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if gd.Name != "calculator" || gd.MaxIterations != 50 || gd.AllowCycles {
		t.Errorf("header = %+v", gd)
	}
	if len(gd.Nodes) != 2 || gd.Nodes[1].Config["operator"] != "+" {
		t.Errorf("nodes = %+v", gd.Nodes)
	}
	if len(gd.Connections) != 1 || gd.Connections[0].String() != "a.output -> op.a" {
		t.Errorf("connections = %+v", gd.Connections)
	}

	kinds := make([]string, len(gd.Events))
	for i := range gd.Events {
		kinds[i] = gd.Events[i].Kind()
	}
	if got := strings.Join(kinds, ","); got != "set,invalidate,trigger,disconnect" {
		t.Errorf("event kinds = %s", got)
	}
	if err := gd.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no nodes", "name: x\n"},
		{"unknown field", "name: x\nnodes: [{name: a, type: number}]\nstart: a\n"},
		{"bad path", "name: x\nnodes: [{name: a, type: number}]\nconnections: [{from: a, to: a.b}]\n"},
		{"event without kind", "name: x\nnodes: [{name: a, type: number}]\nevents: [{value: 1}]\n"},
		{"negative budget", "name: x\nmax_iterations: -3\nnodes: [{name: a, type: number}]\n"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseString(tt.yaml)
			if !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("ParseString() error = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := NewParser().ParseString("name: [unclosed"); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p := NewParser()
	gd, err := p.ParseString(calculatorYAML)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "calc.yaml")
	if err := p.MarshalToFile(gd, path); err != nil {
		t.Fatalf("MarshalToFile() error = %v", err)
	}
	again, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if again.Name != gd.Name || len(again.Nodes) != len(gd.Nodes) || len(again.Events) != len(gd.Events) {
		t.Errorf("round trip changed the definition: %+v", again)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := NewParser().ParseFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
