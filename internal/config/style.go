package config

import (
	"bytes"
	"path/filepath"
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"weave/internal/codegen"
)

// Style resolves indentation and line endings for the generated file at
// path. Settings in weave.toml win over .editorconfig, which wins over the
// writer defaults.
func (c *Config) Style(fsys afero.Fs, path string) (codegen.WriterOptions, error) {
	def, err := EditorConfig(fsys, path)
	if err != nil {
		return codegen.WriterOptions{}, err
	}
	var opt codegen.WriterOptions

	style, size, newline := def.IndentStyle, 0, def.EndOfLine
	if n, err := strconv.Atoi(def.IndentSize); err == nil {
		size = n
	} else if def.TabWidth > 0 {
		size = def.TabWidth
	}
	if c.Output.IndentStyle != "" {
		style = c.Output.IndentStyle
	}
	if c.Output.IndentSize > 0 {
		size = c.Output.IndentSize
	}
	if c.Output.Newline != "" {
		newline = c.Output.Newline
	}

	opt.UseSpaces = style == editorconfig.IndentStyleSpaces
	opt.IndentWidth = size
	if newline == editorconfig.EndOfLineCrLf {
		opt.Newline = "\r\n"
	}
	return opt, nil
}

// EditorConfig returns the .editorconfig definition that applies to path.
// Files are read from the directory of path upwards until one declares
// root = true; nearer files override farther ones.
func EditorConfig(fsys afero.Fs, path string) (*editorconfig.Definition, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("failed to resolve %q: %w", path, err)
	}
	type level struct {
		dir string
		ec  *editorconfig.Editorconfig
	}
	var chain []level
	dir := filepath.Dir(abs)
	for {
		name := filepath.Join(dir, ".editorconfig")
		data, err := afero.ReadFile(fsys, name)
		root := false
		switch {
		case err == nil:
			ec, err := editorconfig.Parse(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Errorf("%s: %w", name, err)
			}
			chain = append(chain, level{dir: dir, ec: ec})
			root = ec.Root
		case !errors.Is(err, afero.ErrFileNotFound):
			return nil, errors.Errorf("read %s: %w", name, err)
		}
		parent := filepath.Dir(dir)
		if root || parent == dir {
			break
		}
		dir = parent
	}

	out := &editorconfig.Definition{}
	for i := len(chain) - 1; i >= 0; i-- {
		rel, err := filepath.Rel(chain[i].dir, abs)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		d, err := chain[i].ec.GetDefinitionForFilename(filepath.ToSlash(rel))
		if err != nil {
			return nil, errors.Errorf("%s: %w", filepath.Join(chain[i].dir, ".editorconfig"), err)
		}
		overlay(out, d)
	}
	return out, nil
}

func overlay(dst, src *editorconfig.Definition) {
	if src.IndentStyle != "" {
		dst.IndentStyle = src.IndentStyle
	}
	if src.IndentSize != "" {
		dst.IndentSize = src.IndentSize
	}
	if src.TabWidth > 0 {
		dst.TabWidth = src.TabWidth
	}
	if src.EndOfLine != "" {
		dst.EndOfLine = src.EndOfLine
	}
	if src.Charset != "" {
		dst.Charset = src.Charset
	}
}
