// Package store holds the catalogs known to a resolver configuration.
//
// A Store keeps the ordered list of configured catalog locations and a cache of
// loaded catalogs keyed by absolute location.  Each location is fetched and
// parsed at most once; concurrent requests for a catalog that is still loading
// wait for the first load to finish.  Failures are cached until Invalidate is
// called, except a missing catalog, which is cached as an empty one.
package store
