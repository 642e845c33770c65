package xmlcatalog

import (
	"context"
	"io"
)

// RequestKind distinguishes entity resolution from URI resolution
type RequestKind int

// Request kinds
const (
	// ExternalIdentifier resolves a (publicId?, systemId) pair, as found in a
	// DOCTYPE or entity declaration.
	ExternalIdentifier RequestKind = iota

	// PublicOnly resolves a bare public identifier.
	PublicOnly

	// URIReference resolves a URI reference (e.g. an xsl:include href),
	// optionally relative to Base.  A urn:publicid: URN is resolved as the
	// public identifier it wraps.
	URIReference
)

func (k RequestKind) String() string {
	switch k {
	case ExternalIdentifier:
		return "external-identifier"
	case PublicOnly:
		return "public"
	case URIReference:
		return "uri"
	default:
		return "unknown"
	}
}

// Request describes a single resolution request
type Request struct {
	Kind     RequestKind
	PublicID string
	SystemID string
	URI      string
	Base     string // base URI for relative URI references

	// Catalogs are additional, request-scoped catalog URIs nominated by the
	// document being processed (oasis-xml-catalog processing instructions).
	// They are consulted before the configured catalogs.
	Catalogs []string
}

// Result is the outcome of a resolution.  URI is only meaningful if Found.
type Result struct {
	URI   string
	Found bool
}

// NotFound is the negative result
var NotFound = Result{}

// Resolved returns a positive result for the given URI
func Resolved(uri string) Result {
	return Result{URI: uri, Found: true}
}

// Fetcher opens the content at an absolute location.  Implementations report
// a location that does not exist with an error satisfying
// errors.Is(err, ErrCatalogMissing).
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// FetcherFunc is a function that can be used to satisfy the Fetcher interface
type FetcherFunc func(ctx context.Context, location string) (io.ReadCloser, error)

// Fetch opens the given location
func (f FetcherFunc) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	return f(ctx, location)
}
