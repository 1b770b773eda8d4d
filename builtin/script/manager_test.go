package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManagerDiscover(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hypot.lua", `-- @name: hypotenuse
-- @category: math
-- @description: Length of the hypotenuse
-- @version: 1.0.0
function compute(i) return math.sqrt(i.a * i.a + i.b * i.b) end
`)
	writeScript(t, dir, "plain.lua", "return 1\n")
	writeScript(t, dir, "broken.lua", "return (\n")
	writeScript(t, dir, "notes.txt", "not a script")

	m := NewManager(dir, false)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	scripts := m.ListScripts()
	if len(scripts) != 2 {
		t.Fatalf("ListScripts() = %d scripts, want 2", len(scripts))
	}
	if scripts[0].Name != "hypotenuse" || scripts[1].Name != "plain" {
		t.Errorf("names = %s, %s", scripts[0].Name, scripts[1].Name)
	}

	s, ok := m.GetScript("hypotenuse")
	if !ok {
		t.Fatal("hypotenuse not found")
	}
	if s.Category != "math" || s.Version != "1.0.0" || s.Description != "Length of the hypotenuse" {
		t.Errorf("metadata = %+v", s)
	}
	if p, _ := m.GetScript("plain"); p.Category != "script" {
		t.Errorf("default category = %q", p.Category)
	}
}

func TestManagerMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"), false)
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() error = %v", err)
	}
	if len(m.ListScripts()) != 0 {
		t.Error("missing directory should hold no scripts")
	}
}

func TestValidateScript(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, false)

	if err := m.ValidateScript(writeScript(t, dir, "ok.lua", "return 1")); err != nil {
		t.Errorf("ValidateScript() error = %v", err)
	}
	if err := m.ValidateScript(writeScript(t, dir, "bad.lua", "end")); !errors.Is(err, ErrSyntax) {
		t.Errorf("ValidateScript() error = %v, want ErrSyntax", err)
	}
	if err := m.Add(&Script{Name: "inline", Content: "return"}); err != nil {
		t.Errorf("Add() error = %v", err)
	}
	if _, ok := m.GetScript("inline"); !ok {
		t.Error("added script not found")
	}
}
