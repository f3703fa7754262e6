package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/schema"
)

// Parse decodes hubrun.yaml content without validation or defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate reads a config file, validates it against the schema,
// applies defaults and returns warnings about ignored keys.
// Every returned error is a configuration error.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, huberrors.Configf("failed to read config file: %v", err)
	}

	cfg, warnings, err := LoadFromBytes(data)
	if err != nil {
		return nil, warnings, huberrors.Configf("%s: %v", path, err)
	}
	return cfg, warnings, nil
}

// LoadFromBytes validates and decodes hubrun.yaml content and applies defaults.
func LoadFromBytes(data []byte) (*Config, []string, error) {
	if err := schema.ValidateConfig(data); err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	unknownWarnings := detectUnknownFields(data)

	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)

	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}
	return cfg, allWarnings, nil
}

// LoadDir loads hubrun.yaml from dir. A missing file yields the defaults.
func LoadDir(dir string) (*Config, []string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil, nil
	}
	return LoadAndValidate(path)
}
