package xmlcatalog

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for catalog loading.  Not finding a match is never an error;
// see Result.
var (
	// ErrCatalogInvalid means a catalog document was read, but is not
	// well-formed or is not a catalog.
	ErrCatalogInvalid = errors.New("catalog invalid")

	// ErrNotACatalog means the document root is not an OASIS catalog element.
	// It is a kind of ErrCatalogInvalid.
	ErrNotACatalog = errors.New("not a catalog")

	// ErrCatalogUnavailable means a catalog could not be read for a reason
	// other than its absence (permissions, network, bad location string).
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrCatalogMissing means the catalog does not exist.  It is treated as an
	// empty catalog.
	ErrCatalogMissing = errors.New("catalog missing")
)

// LoadError describes a failure to load the catalog at Location.  Kind is one
// of the sentinel errors above.
type LoadError struct {
	Location string
	Kind     error
	Err      error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Location)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Location, e.Err)
}

// Unwrap returns the underlying cause
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the failure kind.  A NotACatalog failure is also CatalogInvalid.
func (e *LoadError) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return e.Kind == ErrNotACatalog && target == ErrCatalogInvalid
}

// NewLoadError creates a LoadError of the given kind
func NewLoadError(location string, kind, err error) *LoadError {
	return &LoadError{Location: location, Kind: kind, Err: err}
}
