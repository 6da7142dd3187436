// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed builtin.json
var builtinRegistry []byte

// Builtin returns the registry compiled into the binary.
func Builtin() *ActivityRegistry {
	var reg ActivityRegistry
	if err := json.Unmarshal(builtinRegistry, &reg); err != nil {
		panic(fmt.Sprintf("registry: embedded registry is malformed: %v", err))
	}
	return &reg
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrBuiltin reads path, falling back to the embedded registry when the
// file does not exist. Any other read or parse error is returned.
func LoadOrBuiltin(path string) (*ActivityRegistry, error) {
	if path == "" {
		return Builtin(), nil
	}
	reg, err := LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return Builtin(), nil
	}
	return reg, err
}

// Save writes the registry as indented JSON, creating parent directories.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
