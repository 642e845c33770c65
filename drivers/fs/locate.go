package fs

import (
	"os"
	"path/filepath"

	"github.com/birkland/xmlcatalog"
	"github.com/pkg/errors"
)

// DefaultCatalogName is the file name LocateCatalog looks for
const DefaultCatalogName = "catalog.xml"

// LocateCatalog finds the file with the given name in the given directory
// (or the directory of the given file), or in the nearest parent directory
// containing one.  The primary use case is finding the catalog that goes with
// a working directory or document when none is configured.
//
// If no catalog is found crawling up to /, the error satisfies
// errors.Is(err, xmlcatalog.ErrCatalogMissing).
func LocateCatalog(loc, name string) (string, error) {
	if name == "" {
		name = DefaultCatalogName
	}

	addr, err := filepath.Abs(loc)
	if err != nil {
		return "", errors.Wrapf(err, "could not make absolute %s", loc)
	}

	info, err := os.Stat(addr)
	if err != nil {
		return "", errors.Wrapf(err, "error finding catalog for %s", loc)
	}
	if !info.IsDir() {
		addr = filepath.Dir(addr)
	}

	return crawlForCatalog(addr, name)
}

// Crawl up a directory hierarchy until we find a catalog.
func crawlForCatalog(dir, name string) (string, error) {
	found, err := isCatalog(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrapf(err, "error detecting catalog")
	}
	if found {
		return filepath.Join(dir, name), nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", errors.Wrapf(xmlcatalog.ErrCatalogMissing, "no %s found crawling up to /", name)
	}

	return crawlForCatalog(parent, name)
}

// Detect if the given path is a regular file.  We expect a "file not found"
// error if it isn't there, and simply return false in that case.  Anything
// else (e.g. "permission denied"), we should truly return as an error
func isCatalog(path string) (bool, error) {
	f, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "error checking %s", path)
	}

	return err == nil && f.Mode().IsRegular(), nil
}
