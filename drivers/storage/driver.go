// Package storage fetches catalogs from any storage the afs abstract file
// system supports: local files, in-memory files, http(s), and cloud storage
// with the matching afs providers registered.
package storage

import (
	"context"
	"io"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Driver is an afs backed catalog fetcher
type Driver struct {
	fs afs.Service
}

// New creates a driver using the given afs service, or a default one if nil
func New(fs afs.Service) *Driver {
	if fs == nil {
		fs = afs.New()
	}
	return &Driver{fs: fs}
}

// Fetch opens the catalog at the given URL.  A URL that does not exist is
// reported as xmlcatalog.ErrCatalogMissing.
func (d *Driver) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	exists, err := d.fs.Exists(ctx, location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not check %s", location)
	}
	if !exists {
		return nil, errors.Wrapf(xmlcatalog.ErrCatalogMissing, "nothing at %s", location)
	}

	reader, err := d.fs.OpenURL(ctx, location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", location)
	}
	return reader, nil
}

// Put uploads catalog content to the given URL
func (d *Driver) Put(ctx context.Context, location string, content io.Reader) error {
	if err := d.fs.Upload(ctx, location, file.DefaultFileOsMode, content); err != nil {
		return errors.Wrapf(err, "could not upload %s", location)
	}
	return nil
}

// Join resolves a relative location against a base URL, the way afs does.
// Locations with a scheme or an absolute path are returned as is.
func Join(baseURL, location string) string {
	if uri.IsAbsolute(location) || !url.IsRelative(location) {
		return location
	}
	return url.Join(baseURL, location)
}
