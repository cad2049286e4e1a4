package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the file format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file %q: use .yaml, .yml, .json or .toml", path)
	}
}

// Load decodes the config file at path on top of base. Fields missing from
// the file keep the value they have in base.
func Load(path string, base Options) (Options, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Options{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading config: %w", err)
	}
	opts := base
	if err := Decode(data, format, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return opts, nil
}

// Decode unmarshals data into opts. JSON is read with the YAML decoder,
// which accepts it as a subset.
func Decode(data []byte, format Format, opts *Options) error {
	switch format {
	case FormatYAML, FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return yaml.Unmarshal(data, opts)
	case FormatTOML:
		return toml.Unmarshal(data, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Write encodes opts in the given format.
func Write(w io.Writer, opts Options, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(opts); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Save writes opts to path, choosing the format from its extension.
func Save(path string, opts Options) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, opts, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
