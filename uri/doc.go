// Package uri contains the URI arithmetic used by catalogs: resolving
// references against xml:base values, normalizing identifiers before they are
// compared, and unwrapping urn:publicid: URNs.
package uri
