package resolv

import (
	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/internal/resolv"
	"github.com/birkland/xmlcatalog/uri"
)

// query holds normalized identifiers.  A query with a uri is a URI
// reference lookup; otherwise it is an external identifier lookup.
type query struct {
	publicID string
	systemID string
	uri      string
}

func externalQuery(publicID, systemID string) query {
	if pub, ok := uri.UnwrapURN(publicID); ok {
		publicID = pub
	}

	// A publicid URN as system identifier stands in for the public
	// identifier, unless there already is one
	if pub, ok := uri.UnwrapURN(systemID); ok {
		if publicID == "" {
			publicID = pub
		}
		systemID = ""
	}

	q := query{systemID: uri.NormalizeSystem(systemID)}
	if publicID != "" {
		q.publicID = uri.NormalizePublic(publicID)
	}
	return q
}

func (q query) empty() bool {
	return q.publicID == "" && q.systemID == "" && q.uri == ""
}

// match matches the query against the entries of one catalog
func (q query) match(cat *xmlcatalog.Catalog, prefer xmlcatalog.Prefer) resolv.Match {
	if q.uri != "" {
		return resolv.URI(cat, q.uri)
	}

	if q.systemID != "" {
		if m := resolv.System(cat, q.systemID); m.Found || m.Delegated() {
			return m
		}
	}

	if q.publicID != "" {
		return resolv.Public(cat, q.publicID, q.systemID != "", prefer)
	}

	return resolv.Match{}
}

// delegated is the query to send to the catalogs of a delegate entry of the
// given kind.  Delegated external identifier lookups carry only the
// identifier that was matched.
func (q query) delegated(via xmlcatalog.Kind) query {
	switch via {
	case xmlcatalog.DelegateSystem:
		return query{systemID: q.systemID}
	case xmlcatalog.DelegatePublic:
		return query{publicID: q.publicID}
	default:
		return q
	}
}
