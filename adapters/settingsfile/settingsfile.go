// Package settingsfile loads calculator settings from JSON, YAML or HCL files.
package settingsfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"synergism-calc/core/settings"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// Format is a settings file syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", errors.Newf(errors.TypeInput, "cannot tell the settings format of %s", path).
			WithContext("path", path)
	}
}

// Load reads and validates the settings file at path.
func Load(path string) (*settings.Settings, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot read settings %s", path)
	}

	s, err := parse(data, path, format)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logging.Debug("settings loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("cost_tables", len(s.ShopQuarkCost)))
	return s, nil
}

// Parse reads settings in the given format and validates them.
func Parse(data []byte, format Format) (*settings.Settings, error) {
	s, err := parse(data, "settings."+string(format), format)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parse(data []byte, filename string, format Format) (*settings.Settings, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatHCL:
		return parseHCL(data, filename)
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown settings format %q", format)
	}
}

func parseJSON(data []byte) (*settings.Settings, error) {
	var s settings.Settings
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Parsing("invalid JSON settings", err)
	}
	return &s, nil
}

func parseYAML(data []byte) (*settings.Settings, error) {
	var s settings.Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Parsing("invalid YAML settings", err)
	}
	return &s, nil
}
