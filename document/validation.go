package document

import (
	"fmt"

	"github.com/birkland/xmlcatalog"
	"github.com/birkland/xmlcatalog/uri"
)

// Problem is a questionable construct found in a loaded catalog.
type Problem struct {
	Entry   xmlcatalog.Entry
	Message string
}

func (p Problem) String() string {
	if p.Entry.ID != "" {
		return fmt.Sprintf("%s (id=%s): %s", p.Entry.Kind, p.Entry.ID, p.Message)
	}
	return fmt.Sprintf("%s %s: %s", p.Entry.Kind, p.Entry.Match, p.Message)
}

// Validate reports constructs that load fine, because the catalog format is
// read leniently, but probably do not do what the author intended.
//
// Reported:
//
// Groups nested inside groups (not allowed by the OASIS schema).
//
// Targets that are still relative, because the catalog has no base URI.
//
// Exact match entries that can never match, because an earlier entry of the
// same kind has the same identifier.
//
// An empty result does not mean that any target exists.
func Validate(cat *xmlcatalog.Catalog) []Problem {
	var problems []Problem
	seen := make(map[xmlcatalog.Kind]map[string]bool)

	var check func(list []xmlcatalog.Entry, inGroup bool)
	check = func(list []xmlcatalog.Entry, inGroup bool) {
		for _, e := range list {
			switch e.Kind {
			case xmlcatalog.Group:
				if inGroup {
					problems = append(problems, Problem{e, "group nested inside a group"})
				}
				check(e.Entries, true)
				continue
			case xmlcatalog.System, xmlcatalog.Public, xmlcatalog.URI:
				if seen[e.Kind] == nil {
					seen[e.Kind] = make(map[string]bool)
				}
				key := e.Match
				if e.Kind == xmlcatalog.Public {
					key += "|" + e.Prefer.String()
				}
				if seen[e.Kind][key] {
					problems = append(problems, Problem{e, "shadowed by an earlier entry for the same identifier"})
				}
				seen[e.Kind][key] = true
			}

			if !uri.IsAbsolute(e.Target) {
				problems = append(problems, Problem{e, fmt.Sprintf("target %q is not absolute", e.Target)})
			}
		}
	}

	check(cat.Entries, false)
	return problems
}
