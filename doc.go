// Package xmlcatalog defines an API for resolving external identifiers against
// OASIS XML Catalogs.
//
// A catalog maps public identifiers, system identifiers and URIs to alternate
// locations.  Catalog documents are read by the document package, cached by a
// store.Store, and consulted by a resolv.Engine, which implements the OASIS
// matching rules (exact match, rewrite, suffix, delegation, groups and next
// catalogs).  The types in this package are the shared vocabulary between them.
//
// Resolution never fetches the resolved resource.  Callers that need bytes may
// hand the resulting URI to a scheme.Registry or any other fetcher.
package xmlcatalog
