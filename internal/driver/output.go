package driver

import (
	"path"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"weave/internal/config"
)

// OutputPath returns where the generated file for rel goes, relative to the
// project root: "views/card.weave" becomes "views/card.weave.go", or
// "<dir>/views/card.weave.go" when an output directory is configured.
func OutputPath(rel string, out config.Output) string {
	suffix := out.Suffix
	if suffix == "" {
		suffix = config.Default().Output.Suffix
	}
	name := filepath.ToSlash(rel) + suffix
	if out.Dir != "" {
		name = path.Join(filepath.ToSlash(out.Dir), name)
	}
	return name
}

// MapPath returns the source map path that belongs to an output path.
func MapPath(output string) string { return output + ".map" }

func writeFile(fsys afero.Fs, root, rel string, data []byte) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := fsys.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Errorf("write %s: %w", rel, err)
	}
	if err := afero.WriteFile(fsys, full, data, 0o644); err != nil {
		return errors.Errorf("write %s: %w", rel, err)
	}
	return nil
}
