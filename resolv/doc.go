// Package resolv maps external identifiers and URI references to alternate
// locations, using OASIS XML catalogs.
//
// An Engine consults an ordered list of catalogs, following delegation and
// nextCatalog chains, and answers with the first match.  Catalogs are loaded
// on demand through a Loader, typically a *store.Store shared by all engines
// of a configuration.  Engines hold no per-request state and are safe for
// concurrent use.
package resolv
