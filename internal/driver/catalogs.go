package driver

import (
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"weave/internal/catalog"
)

// LoadCatalogs reads every catalog file, relative paths taken from root, and
// merges the descriptors in file order. All load failures are reported
// together. No paths yields an empty catalog.
func LoadCatalogs(fsys afero.Fs, root string, paths []string) (*catalog.Catalog, error) {
	if len(paths) == 0 {
		return catalog.Empty(), nil
	}
	var (
		errs  *multierror.Error
		descs []catalog.Descriptor
	)
	for _, p := range paths {
		if !filepath.IsAbs(p) && root != "" {
			p = filepath.Join(root, p)
		}
		c, err := catalog.Load(fsys, p)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		for _, d := range c.All() {
			descs = append(descs, *d)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	merged, err := catalog.New(descs...)
	if err != nil {
		return nil, errors.Errorf("merge catalogs: %w", err)
	}
	return merged, nil
}
