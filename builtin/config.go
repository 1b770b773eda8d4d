package builtin

import (
	"fmt"

	"github.com/agentstation/dockflow/yaml"
)

// Config readers. Values were checked against the node's config schema, so
// a wrong type falls back to the default.

func floatConfig(cfg map[string]any, key string, def float64) float64 {
	if v, ok := toFloat(yaml.Normalize(cfg[key])); ok {
		return v
	}
	return def
}

func intConfig(cfg map[string]any, key string, def int) int {
	if v, ok := toFloat(yaml.Normalize(cfg[key])); ok {
		return int(v)
	}
	return def
}

func stringConfig(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return def
}

func boolConfig(cfg map[string]any, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

func stringsConfig(cfg map[string]any, key string) ([]string, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of names", ErrInvalidConfig, key)
	}
	names := make([]string, 0, len(list))
	for _, item := range list {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a list of names", ErrInvalidConfig, key)
		}
		names = append(names, name)
	}
	return names, nil
}
