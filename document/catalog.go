package document

import (
	"fmt"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/uri"
)

// attrNames gives the match and target attribute names of each entry kind
var attrNames = map[xmlcatalog.Kind][2]string{
	xmlcatalog.System:         {"systemId", "uri"},
	xmlcatalog.Public:         {"publicId", "uri"},
	xmlcatalog.URI:            {"name", "uri"},
	xmlcatalog.RewriteSystem:  {"systemIdStartString", "rewritePrefix"},
	xmlcatalog.RewriteURI:     {"uriStartString", "rewritePrefix"},
	xmlcatalog.SystemSuffix:   {"systemIdSuffix", "uri"},
	xmlcatalog.URISuffix:      {"uriSuffix", "uri"},
	xmlcatalog.DelegatePublic: {"publicIdStartString", "catalog"},
	xmlcatalog.DelegateSystem: {"systemIdStartString", "catalog"},
	xmlcatalog.DelegateURI:    {"uriStartString", "catalog"},
	xmlcatalog.NextCatalog:    {"", "catalog"},
}

// Load reads a catalog from the given source.  Location is the absolute URI
// the document was read from; it is the base for relative references, and may
// be empty for documents that have no location.
//
// Failures are *xmlcatalog.LoadError values: ErrNotACatalog if the root element
// is not an OASIS catalog, ErrCatalogInvalid if the document cannot be parsed.
func Load(src Source, location string) (*xmlcatalog.Catalog, error) {
	root, err := src.tree()
	if err != nil {
		return nil, xmlcatalog.NewLoadError(location, xmlcatalog.ErrCatalogInvalid, err)
	}

	if root.Name.Space != xmlcatalog.Namespace || root.Name.Local != "catalog" {
		return nil, xmlcatalog.NewLoadError(location, xmlcatalog.ErrNotACatalog,
			fmt.Errorf("root element is {%s}%s", root.Name.Space, root.Name.Local))
	}

	base := baseOf(location, root)
	prefer := xmlcatalog.PreferDefault
	if p, ok := root.Attribute("prefer"); ok {
		prefer = xmlcatalog.ParsePrefer(p)
	}

	return &xmlcatalog.Catalog{
		Location: location,
		Base:     base,
		Prefer:   prefer,
		Entries:  entries(root, base, prefer),
	}, nil
}

// baseOf composes the base URI of n from the base in effect at its parent
// and its own xml:base, if any.
func baseOf(parent string, n *Node) string {
	if b, ok := n.Base(); ok {
		return uri.Resolve(parent, b)
	}
	return parent
}

func entries(parent *Node, base string, prefer xmlcatalog.Prefer) []xmlcatalog.Entry {
	var list []xmlcatalog.Entry

	for _, n := range parent.Children {
		if n.Name.Space != xmlcatalog.Namespace {
			continue
		}

		kind := xmlcatalog.ParseKind(n.Name.Local)
		if kind == xmlcatalog.Unknown {
			continue
		}

		nbase := baseOf(base, n)
		id, _ := n.Attribute("id")

		if kind == xmlcatalog.Group {
			gprefer := prefer
			if p, ok := n.Attribute("prefer"); ok {
				gprefer = xmlcatalog.ParsePrefer(p).Or(prefer)
			}
			list = append(list, xmlcatalog.Entry{
				Kind:    xmlcatalog.Group,
				Base:    nbase,
				Prefer:  gprefer,
				ID:      id,
				Entries: entries(n, nbase, gprefer),
			})
			continue
		}

		names := attrNames[kind]
		var match string
		if names[0] != "" {
			m, ok := n.Attribute(names[0])
			if !ok {
				continue
			}
			match = normalizeMatch(kind, m)
		}

		target, ok := n.Attribute(names[1])
		if !ok {
			continue
		}

		list = append(list, xmlcatalog.Entry{
			Kind:   kind,
			Match:  match,
			Target: uri.Resolve(nbase, target),
			Base:   nbase,
			Prefer: prefer,
			ID:     id,
		})
	}

	return list
}

// normalizeMatch normalizes the identifier an entry matches on, the same way
// requested identifiers are normalized.
func normalizeMatch(kind xmlcatalog.Kind, m string) string {
	switch kind {
	case xmlcatalog.Public, xmlcatalog.DelegatePublic:
		if unwrapped, ok := uri.UnwrapURN(m); ok {
			m = unwrapped
		}
		return uri.NormalizePublic(m)
	default:
		return uri.NormalizeSystem(m)
	}
}
