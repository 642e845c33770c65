package resolv

import (
	"sort"
	"strings"

	"github.com/birkland/xmlcatalog"
)

// Cxt carries the state of a single resolution request through the catalog
// graph: the default preference, and every catalog location visited so far.
// A Cxt must not be shared between requests.
type Cxt struct {
	Prefer  xmlcatalog.Prefer
	visited map[string]bool
}

// NewCxt establishes a new resolver context with the given default
// preference.  An unset preference means system.
func NewCxt(prefer xmlcatalog.Prefer) *Cxt {
	return &Cxt{
		Prefer:  prefer.Or(xmlcatalog.PreferSystem),
		visited: make(map[string]bool),
	}
}

// Visit records a visit to the catalog at the given location.  It returns
// false if the location has been visited before.
func (c *Cxt) Visit(location string) bool {
	if c.visited[location] {
		return false
	}
	c.visited[location] = true
	return true
}

// Visited lists the visited catalog locations, sorted
func (c *Cxt) Visited() []string {
	locs := make([]string, 0, len(c.visited))
	for l := range c.visited {
		locs = append(locs, l)
	}
	sort.Strings(locs)
	return locs
}

// Match is the outcome of matching an identifier against one catalog.
//
// Either the identifier matched (Found, with URI), or resolution must restart
// with only the Delegates catalogs (Delegated by an entry of kind Via), or
// neither; in which case the catalog's next catalogs are to be consulted.
type Match struct {
	URI       string
	Found     bool
	Via       xmlcatalog.Kind
	Delegates []string
}

// Delegated tells whether resolution was handed off to other catalogs
func (m Match) Delegated() bool {
	return len(m.Delegates) > 0
}

func found(uri string) Match {
	return Match{URI: uri, Found: true}
}

// System matches a normalized system identifier: system entries, then the
// longest rewriteSystem, then the longest systemSuffix, then delegateSystem.
func System(cat *xmlcatalog.Catalog, systemID string) Match {
	return match(cat, systemID, xmlcatalog.System, xmlcatalog.RewriteSystem,
		xmlcatalog.SystemSuffix, xmlcatalog.DelegateSystem, nil)
}

// URI matches a normalized URI reference: uri entries, then the longest
// rewriteURI, then the longest uriSuffix, then delegateURI.
func URI(cat *xmlcatalog.Catalog, uri string) Match {
	return match(cat, uri, xmlcatalog.URI, xmlcatalog.RewriteURI,
		xmlcatalog.URISuffix, xmlcatalog.DelegateURI, nil)
}

// Public matches a normalized public identifier against public and
// delegatePublic entries.  When a system identifier was supplied as well,
// only entries whose effective preference is public are considered.
//
// Callers try Public only after System has found nothing in the same
// catalog, so a rewriteSystem or systemSuffix match outranks a public entry
// even under prefer="public", as in OASIS XML Catalogs 1.1 section 7.1.2.
func Public(cat *xmlcatalog.Catalog, publicID string, withSystem bool, def xmlcatalog.Prefer) Match {
	accept := func(e *xmlcatalog.Entry) bool {
		return !withSystem || e.Prefer.Or(def) == xmlcatalog.PreferPublic
	}

	if e := exact(cat, xmlcatalog.Public, publicID, accept); e != nil {
		return found(e.Target)
	}

	if delegates := delegates(cat, xmlcatalog.DelegatePublic, publicID, accept); len(delegates) > 0 {
		return Match{Via: xmlcatalog.DelegatePublic, Delegates: delegates}
	}

	return Match{}
}

func match(cat *xmlcatalog.Catalog, id string, exactKind, rewriteKind, suffixKind, delegateKind xmlcatalog.Kind,
	accept func(*xmlcatalog.Entry) bool) Match {

	if e := exact(cat, exactKind, id, accept); e != nil {
		return found(e.Target)
	}

	if e := longest(cat, rewriteKind, id, strings.HasPrefix); e != nil {
		return found(e.Target + id[len(e.Match):])
	}

	if e := longest(cat, suffixKind, id, strings.HasSuffix); e != nil {
		return found(e.Target)
	}

	if delegates := delegates(cat, delegateKind, id, accept); len(delegates) > 0 {
		return Match{Via: delegateKind, Delegates: delegates}
	}

	return Match{}
}

// exact finds the first entry of the given kind, in document order, whose
// identifier equals id
func exact(cat *xmlcatalog.Catalog, kind xmlcatalog.Kind, id string, accept func(*xmlcatalog.Entry) bool) *xmlcatalog.Entry {
	var hit *xmlcatalog.Entry
	cat.Walk(func(e *xmlcatalog.Entry) bool {
		if e.Kind == kind && e.Match == id && (accept == nil || accept(e)) {
			hit = e
			return false
		}
		return true
	})
	return hit
}

// longest finds the entry of the given kind with the longest identifier
// satisfying cmp(id, entry identifier).  Among equally long ones, the first
// declared wins.
func longest(cat *xmlcatalog.Catalog, kind xmlcatalog.Kind, id string, cmp func(s, part string) bool) *xmlcatalog.Entry {
	var best *xmlcatalog.Entry
	cat.Walk(func(e *xmlcatalog.Entry) bool {
		if e.Kind == kind && cmp(id, e.Match) && (best == nil || len(e.Match) > len(best.Match)) {
			best = e
		}
		return true
	})
	return best
}

// delegates lists the catalogs of all matching delegate entries, longest
// start string first, without duplicates
func delegates(cat *xmlcatalog.Catalog, kind xmlcatalog.Kind, id string, accept func(*xmlcatalog.Entry) bool) []string {
	var hits []*xmlcatalog.Entry
	cat.Walk(func(e *xmlcatalog.Entry) bool {
		if e.Kind == kind && strings.HasPrefix(id, e.Match) && (accept == nil || accept(e)) {
			hits = append(hits, e)
		}
		return true
	})

	sort.SliceStable(hits, func(i, j int) bool {
		return len(hits[i].Match) > len(hits[j].Match)
	})

	var catalogs []string
	seen := make(map[string]bool)
	for _, e := range hits {
		if !seen[e.Target] {
			seen[e.Target] = true
			catalogs = append(catalogs, e.Target)
		}
	}
	return catalogs
}

// NextCatalogs lists the catalogs named by nextCatalog entries, in
// declaration order
func NextCatalogs(cat *xmlcatalog.Catalog) []string {
	var next []string
	cat.Walk(func(e *xmlcatalog.Entry) bool {
		if e.Kind == xmlcatalog.NextCatalog {
			next = append(next, e.Target)
		}
		return true
	})
	return next
}
