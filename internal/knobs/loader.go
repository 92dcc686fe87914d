// Package knobs loads operator pricing configuration and upgrades it to the
// current schema before it reaches the engine.
package knobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charterquote/quoteengine/internal/models"
)

// Decode parses YAML or JSON configuration, applies migrations and fills
// optional defaults.
func Decode(data []byte) (models.Knobs, error) {
	raw := map[string]any{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return models.Knobs{}, fmt.Errorf("parse knobs: %w", err)
		}
		return FromMap(raw)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return models.Knobs{}, fmt.Errorf("parse knobs: %w", err)
	}
	return FromMap(raw)
}

// FromMap decodes an already-parsed configuration tree. raw is migrated in
// place.
func FromMap(raw map[string]any) (models.Knobs, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	Migrate(raw)

	normalized, err := json.Marshal(normalize(raw))
	if err != nil {
		return models.Knobs{}, fmt.Errorf("encode knobs: %w", err)
	}

	var k models.Knobs
	if err := json.Unmarshal(normalized, &k); err != nil {
		return models.Knobs{}, fmt.Errorf("decode knobs: %w", err)
	}
	return k.WithDefaults(), nil
}

// Load reads a configuration file from disk.
func Load(path string) (models.Knobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Knobs{}, fmt.Errorf("read knobs file: %w", err)
	}
	k, err := Decode(data)
	if err != nil {
		return models.Knobs{}, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// normalize converts YAML maps with non-string keys into JSON-encodable maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}
