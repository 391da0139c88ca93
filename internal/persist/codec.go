// Package persist stores the language model settings tree. File keeps the
// whole tree in one JSON, YAML or TOML document; SQLite keeps one row per
// provider. Both apply the same partial-merge rules as the in-memory store.
package persist

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding, chosen by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor maps a file extension to its format.
// Supports: .yaml/.yml, .json, .toml
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported settings extension: %q", ext)
	}
}

func (f Format) marshal(v any) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	default:
		return json.MarshalIndent(v, "", "  ")
	}
}

func (f Format) unmarshal(b []byte, v any) error {
	switch f {
	case FormatYAML:
		return yaml.Unmarshal(b, v)
	case FormatTOML:
		return toml.Unmarshal(b, v)
	default:
		return json.Unmarshal(b, v)
	}
}
