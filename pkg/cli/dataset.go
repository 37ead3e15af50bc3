package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IsDataFile reports whether path names a YAML or JSON file.
func IsDataFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadData decodes the YAML or JSON file at path into v.
func LoadData(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := DecodeData(data, path, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// DecodeData decodes data into v, choosing the format from name's
// extension. Unknown fields are rejected so a misspelled key does not
// silently drop entries. Without a known extension YAML is tried first,
// then JSON. An empty document leaves v untouched.
func DecodeData(data []byte, name string, v any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return decodeYAML(data, v)
	case ".json":
		return decodeJSON(data, v)
	}
	if err := decodeYAML(data, v); err != nil {
		if jerr := decodeJSON(data, v); jerr != nil {
			return fmt.Errorf("failed to parse data (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func decodeJSON(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if dec.More() {
		return errors.New("failed to parse JSON: trailing data")
	}
	return nil
}
