// Package paramfile loads CP2K parameter trees from JSON, YAML, TOML and
// HCL files. Load decodes one file into generic nested maps; LoadAll
// converts and layers several files into one tree.
package paramfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/shcv/cp2kinput"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format identifies a parameter file syntax.
type Format string

// Supported formats, named after their usual file extension.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported parameter file format")

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads and decodes a single parameter file.
func Load(fs afero.Fs, path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	params, err := Decode(format, data, path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return params, nil
}

// LoadAll loads each file as a parameter tree and merges the trees left
// to right with cp2kinput.Merge, so later files override earlier ones.
func LoadAll(fs afero.Fs, paths ...string) (cp2kinput.Section, error) {
	tree := cp2kinput.Section{}
	for _, p := range paths {
		params, err := Load(fs, p)
		if err != nil {
			return nil, err
		}
		layer, err := cp2kinput.FromMap(params)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", p, err)
		}
		tree = cp2kinput.Merge(tree, layer)
	}
	return tree, nil
}

// Decode parses data in the given format. name is used in diagnostics.
// JSON numbers are kept as json.Number so their literal text survives.
func Decode(format Format, data []byte, name string) (map[string]any, error) {
	var params map[string]any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &params); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &params); err != nil {
			return nil, err
		}
	case FormatHCL:
		return decodeHCL(data, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}
