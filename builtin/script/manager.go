package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
)

// Manager handles script discovery for scripted nodes.
type Manager struct {
	scriptsDir string
	scripts    map[string]*Script
	verbose    bool
}

// Script represents a discovered Lua script.
type Script struct {
	Name        string
	Path        string
	Category    string
	Description string
	Version     string
	Content     string
}

// DefaultDir returns the directory searched when no scripts directory is
// given.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dockflow", "scripts")
}

// NewManager creates a new script manager.
func NewManager(scriptsDir string, verbose bool) *Manager {
	if scriptsDir == "" {
		scriptsDir = DefaultDir()
	}
	return &Manager{
		scriptsDir: scriptsDir,
		scripts:    make(map[string]*Script),
		verbose:    verbose,
	}
}

// Dir returns the scripts directory.
func (m *Manager) Dir() string { return m.scriptsDir }

// Discover finds all Lua scripts in the scripts directory. A missing
// directory holds no scripts.
func (m *Manager) Discover() error {
	if _, err := os.Stat(m.scriptsDir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(m.scriptsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".lua") {
			return nil
		}

		script, err := m.LoadScript(path)
		if err != nil {
			if m.verbose {
				fmt.Fprintf(os.Stderr, "Warning: failed to load script %s: %v\n", path, err)
			}
			return nil // Continue discovering other scripts
		}

		m.scripts[script.Name] = script
		if m.verbose {
			fmt.Fprintf(os.Stderr, "Discovered script: %s (%s)\n", script.Name, script.Path)
		}
		return nil
	})
}

// LoadScript loads a Lua script and reads its metadata comments.
func (m *Manager) LoadScript(path string) (*Script, error) {
	content, err := os.ReadFile(path) //nolint:gosec // Path comes from the scripts directory walk
	if err != nil {
		return nil, err
	}
	if err := Validate(string(content)); err != nil {
		return nil, err
	}

	script := &Script{
		Path:    path,
		Content: string(content),
	}

	// Metadata lives in the leading comment block.
	for _, line := range strings.Split(script.Content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			break
		}

		switch {
		case strings.HasPrefix(line, "-- @name:"):
			script.Name = strings.TrimSpace(strings.TrimPrefix(line, "-- @name:"))
		case strings.HasPrefix(line, "-- @category:"):
			script.Category = strings.TrimSpace(strings.TrimPrefix(line, "-- @category:"))
		case strings.HasPrefix(line, "-- @description:"):
			script.Description = strings.TrimSpace(strings.TrimPrefix(line, "-- @description:"))
		case strings.HasPrefix(line, "-- @version:"):
			script.Version = strings.TrimSpace(strings.TrimPrefix(line, "-- @version:"))
		}
	}

	if script.Name == "" {
		base := filepath.Base(path)
		script.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if script.Category == "" {
		script.Category = "script"
	}

	return script, nil
}

// Add registers a script that did not come from the scripts directory.
func (m *Manager) Add(script *Script) error {
	if err := Validate(script.Content); err != nil {
		return fmt.Errorf("script %s: %w", script.Name, err)
	}
	m.scripts[script.Name] = script
	return nil
}

// GetScript returns a discovered script by name.
func (m *Manager) GetScript(name string) (*Script, bool) {
	script, ok := m.scripts[name]
	return script, ok
}

// ListScripts returns all discovered scripts sorted by name.
func (m *Manager) ListScripts() []*Script {
	scripts := make([]*Script, 0, len(m.scripts))
	for _, script := range m.scripts {
		scripts = append(scripts, script)
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts
}

// ValidateScript checks the syntax of the script at path without running it.
func (m *Manager) ValidateScript(path string) error {
	content, err := os.ReadFile(path) //nolint:gosec // Path is user-provided
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return Validate(string(content))
}

// Validate checks the syntax of a Lua chunk.
func Validate(source string) error {
	l := lua.NewState()
	if err := lua.LoadString(l, source); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return nil
}
