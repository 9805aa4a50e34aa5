package catalog

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog file.
type Format uint8

const (
	FormatYAML Format = iota
	// FormatJSON is decoded by the YAML decoder, JSON being a subset of YAML.
	FormatJSON
	FormatTOML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, errors.Errorf("%s: unknown catalog format (want .yaml, .yml, .json or .toml)", path)
}

// file is the on-disk layout.
type file struct {
	Descriptors []Descriptor `yaml:"descriptors" toml:"descriptors"`
}

// Decode parses a catalog document.
func Decode(data []byte, format Format) (*Catalog, error) {
	var f file
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, errors.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown key %q", undecoded[0].String())
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Errorf("failed to parse catalog: %w", err)
		}
	}
	return New(f.Descriptors...)
}

// Load reads and decodes the catalog at path.
func Load(fs afero.Fs, path string) (*Catalog, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("read catalog: %w", err)
	}
	c, err := Decode(data, format)
	if err != nil {
		return nil, errors.WithDetails(errors.Errorf("%s: %w", path, err), "path", path)
	}
	return c, nil
}

// Encode writes the catalog in the given format.
func (c *Catalog) Encode(format Format) ([]byte, error) {
	f := file{Descriptors: make([]Descriptor, 0, c.Len())}
	for _, d := range c.All() {
		f.Descriptors = append(f.Descriptors, *d)
	}
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, errors.Errorf("encode TOML: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return buf.Bytes(), nil
}
