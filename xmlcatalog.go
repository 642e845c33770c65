package xmlcatalog

import "strings"

// Namespace is the OASIS XML Catalogs namespace name
const Namespace = "urn:oasis:names:tc:entity:xmlns:xml:catalog"

// Kind names a kind of catalog entry
type Kind int

// Catalog entry kinds, in the order the OASIS catalog vocabulary lists them
const (
	Unknown Kind = iota
	System
	Public
	URI
	RewriteSystem
	RewriteURI
	SystemSuffix
	URISuffix
	DelegatePublic
	DelegateSystem
	DelegateURI
	Group
	NextCatalog
)

var kindNames = map[Kind]string{
	System:         "system",
	Public:         "public",
	URI:            "uri",
	RewriteSystem:  "rewriteSystem",
	RewriteURI:     "rewriteURI",
	SystemSuffix:   "systemSuffix",
	URISuffix:      "uriSuffix",
	DelegatePublic: "delegatePublic",
	DelegateSystem: "delegateSystem",
	DelegateURI:    "delegateURI",
	Group:          "group",
	NextCatalog:    "nextCatalog",
}

// String returns the catalog element name of the entry kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind parses a catalog element local name into a Kind.  Unrecognized
// names are Unknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return Unknown
}

// IsDelegate tells whether entries of this kind defer to other catalogs
func (k Kind) IsDelegate() bool {
	return k == DelegatePublic || k == DelegateSystem || k == DelegateURI
}

// Prefer selects between public and system identifier matches when both
// could apply.
type Prefer int

// Prefer values.  PreferDefault means "not declared"; the resolver's configured
// default applies.
const (
	PreferDefault Prefer = iota
	PreferSystem
	PreferPublic
)

// String returns the attribute value form of a preference, or "" if unset
func (p Prefer) String() string {
	switch p {
	case PreferSystem:
		return "system"
	case PreferPublic:
		return "public"
	default:
		return ""
	}
}

// ParsePrefer parses a prefer attribute value.  Anything other than
// "public" or "system" (after trimming) is PreferDefault.
func ParsePrefer(s string) Prefer {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return PreferPublic
	case "system":
		return PreferSystem
	default:
		return PreferDefault
	}
}

// Or returns p, or def if p is unset
func (p Prefer) Or(def Prefer) Prefer {
	if p == PreferDefault {
		return def
	}
	return p
}

// Entry is a single catalog rule.
//
// The meaning of Match and Target depends on Kind:
//
//	System, Public, URI           identifier -> uri
//	RewriteSystem, RewriteURI     startString -> rewritePrefix
//	SystemSuffix, URISuffix       suffix -> uri
//	Delegate*                     startString -> catalog
//	NextCatalog                   (none) -> catalog
//	Group                         (none), see Entries
//
// Target is absolute whenever the catalog had a usable base URI.
type Entry struct {
	Kind    Kind
	Match   string
	Target  string
	Base    string  // base URI in effect where the entry was declared
	Prefer  Prefer  // effective preference at the point of declaration
	ID      string  // optional id attribute
	Entries []Entry // Group members
}

// Catalog is an ordered list of entries read from one catalog document.
// Catalogs are not modified once loaded.
type Catalog struct {
	Location string // absolute location the catalog was read from
	Base     string // base URI of the catalog element
	Prefer   Prefer
	Entries  []Entry
}

// Walk invokes f on every entry in declaration order, descending into groups
// after visiting the group itself.  Returning false from f stops the walk.
func (c *Catalog) Walk(f func(e *Entry) bool) {
	walkEntries(c.Entries, f)
}

func walkEntries(entries []Entry, f func(e *Entry) bool) bool {
	for i := range entries {
		e := &entries[i]
		if !f(e) {
			return false
		}
		if e.Kind == Group && !walkEntries(e.Entries, f) {
			return false
		}
	}
	return true
}

// Len counts all entries, including group members
func (c *Catalog) Len() int {
	n := 0
	c.Walk(func(*Entry) bool {
		n++
		return true
	})
	return n
}
