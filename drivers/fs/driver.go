// Package fs reads and writes catalogs on the local filesystem.
package fs

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
)

// Driver fetches catalogs from the local filesystem.  It serves file: URIs,
// and plain paths.
type Driver struct {
	root string
}

// Config encapsulates a filesystem driver config.
//
// Root, if given, is the directory that relative catalog paths are resolved
// against.  Otherwise, they are resolved against the working directory.
type Config struct {
	Root string
}

// NewDriver initializes a new filesystem driver.  The root directory, if any,
// must exist.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Root == "" {
		return &Driver{}, nil
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not make absolute path of %s", cfg.Root)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not find catalog root")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", cfg.Root)
	}

	return &Driver{root: root}, nil
}

// Fetch opens the catalog file at the given location.  A file that does not
// exist is reported as xmlcatalog.ErrCatalogMissing.
func (d *Driver) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := d.Path(location)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(xmlcatalog.ErrCatalogMissing, "no file at %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}

	info, err := file.Stat()
	if err == nil && info.IsDir() {
		_ = file.Close()
		return nil, errors.Errorf("%s is a directory", path)
	}

	return file, nil
}

// Path maps a location onto a filesystem path.  Locations are file: URIs, or
// paths; relative paths are taken relative to the driver root.
func (d *Driver) Path(location string) (string, error) {
	if !uri.IsAbsolute(location) {
		if d.root != "" && !filepath.IsAbs(location) {
			return filepath.Join(d.root, location), nil
		}
		return filepath.Abs(location)
	}

	return Path(location)
}

// Path converts a file: URI to a filesystem path
func Path(location string) (string, error) {
	if !strings.EqualFold(uri.Scheme(location), "file") {
		return "", errors.Errorf("not a file URI: %s", location)
	}

	u, err := url.Parse(uri.FixFile(location))
	if err != nil {
		return "", errors.Wrapf(err, "could not parse %s", location)
	}

	if u.Host != "" && u.Host != "localhost" {
		return "", errors.Errorf("cannot open remote file %s", location)
	}

	p := u.Path
	// file:///C:/x
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}

	return filepath.FromSlash(p), nil
}
