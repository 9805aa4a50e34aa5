// Package config holds the settings of a weave project: code generation
// switches, binding policy, output style and build inputs.
//
// Settings come from weave.toml, found by walking up from the working
// directory. Output indentation and line endings fall back to .editorconfig.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"go/token"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"

	"weave/internal/binder"
)

// FileName is the name of the project file.
const FileName = "weave.toml"

// TargetGo is the only supported target language.
const TargetGo = "go"

// Config is the configuration record of one project.
type Config struct {
	Target  string `toml:"target"`
	Package string `toml:"package"`
	// Class overrides the page type name derived from the file name.
	Class   string `toml:"class"`
	Runtime string `toml:"runtime"`

	DesignTime      bool `toml:"design_time"`
	Instrumentation bool `toml:"instrumentation"`
	LinePragmas     bool `toml:"line_pragmas"`
	// MaxErrors stops reporting parse errors after this many; 0 is unlimited.
	MaxErrors uint `toml:"max_errors"`

	Binding Binding `toml:"binding"`
	Output  Output  `toml:"output"`
	Build   Build   `toml:"build"`
}

// Binding configures tag helper resolution.
type Binding struct {
	Ambiguity     binder.AmbiguityPolicy `toml:"ambiguity"`
	CaseSensitive bool                   `toml:"case_sensitive"`
	// Catalogs are descriptor files, relative to the project root.
	Catalogs []string `toml:"catalogs"`
}

// Output configures generated files.
type Output struct {
	// IndentStyle is "tab" or "space"; empty defers to .editorconfig.
	IndentStyle string `toml:"indent_style"`
	IndentSize  int    `toml:"indent_size"`
	// Newline is "lf" or "crlf"; empty defers to .editorconfig.
	Newline    string `toml:"newline"`
	SourceMaps bool   `toml:"source_maps"`
	// Dir receives generated files; empty writes next to each template.
	Dir    string `toml:"dir"`
	Suffix string `toml:"suffix"`
}

// Build configures which templates the driver compiles.
type Build struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	// Jobs limits parallel compilations; 0 uses the number of CPUs.
	Jobs int `toml:"jobs"`
	// Cache is the disk cache directory; empty disables caching.
	Cache string `toml:"cache"`
}

// Default returns the configuration used when no weave.toml exists.
func Default() Config {
	return Config{
		Target:      TargetGo,
		LinePragmas: true,
		Output: Output{
			Suffix: ".go",
		},
		Build: Build{
			Include: []string{"**/*.weave"},
		},
	}
}

var (
	indentStyles = []string{"", "tab", "space"}
	newlines     = []string{"", "lf", "crlf"}
)

// Validate checks every field and reports all problems together.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.Target != TargetGo {
		errs = multierror.Append(errs, errors.Errorf("target %q is not supported (want %q)", c.Target, TargetGo))
	}
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		errs = multierror.Append(errs, errors.Errorf("package %q is not a Go identifier", c.Package))
	}
	if c.Class != "" && !token.IsIdentifier(c.Class) {
		errs = multierror.Append(errs, errors.Errorf("class %q is not a Go identifier", c.Class))
	}
	if !slices.Contains(indentStyles, c.Output.IndentStyle) {
		errs = multierror.Append(errs, errors.Errorf("output.indent_style %q: want tab or space", c.Output.IndentStyle))
	}
	if !slices.Contains(newlines, c.Output.Newline) {
		errs = multierror.Append(errs, errors.Errorf("output.newline %q: want lf or crlf", c.Output.Newline))
	}
	if c.Output.IndentSize < 0 {
		errs = multierror.Append(errs, errors.Errorf("output.indent_size must not be negative"))
	}
	if c.Build.Jobs < 0 {
		errs = multierror.Append(errs, errors.Errorf("build.jobs must not be negative"))
	}
	if c.Output.Suffix == "" {
		errs = multierror.Append(errs, errors.Errorf("output.suffix must not be empty"))
	}
	return errs.ErrorOrNil()
}

// Fingerprint identifies the settings that affect generated output. Build
// inputs and output placement do not take part.
func (c *Config) Fingerprint() (string, error) {
	shape := *c
	shape.Build = Build{}
	shape.Output.Dir = ""
	shape.Binding.Catalogs = nil
	h := sha256.New()
	if err := toml.NewEncoder(h).Encode(shape); err != nil {
		return "", errors.Errorf("encode config: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
