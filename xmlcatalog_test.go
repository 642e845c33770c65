package xmlcatalog_test

import (
	"fmt"
	"testing"

	"github.com/birkland/xmlcatalog"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestKindRoundTrip(t *testing.T) {
	kinds := []xmlcatalog.Kind{
		xmlcatalog.System, xmlcatalog.Public, xmlcatalog.URI,
		xmlcatalog.RewriteSystem, xmlcatalog.RewriteURI,
		xmlcatalog.SystemSuffix, xmlcatalog.URISuffix,
		xmlcatalog.DelegatePublic, xmlcatalog.DelegateSystem, xmlcatalog.DelegateURI,
		xmlcatalog.Group, xmlcatalog.NextCatalog, 42,
	}
	for _, kind := range kinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			rt := xmlcatalog.ParseKind(kind.String())
			if rt != kind && rt != xmlcatalog.Unknown {
				t.Errorf("Roundtrip failed for %s", kind)
			}
		})
	}
}

func TestParsePrefer(t *testing.T) {
	cases := map[string]xmlcatalog.Prefer{
		"public":    xmlcatalog.PreferPublic,
		" System ":  xmlcatalog.PreferSystem,
		"":          xmlcatalog.PreferDefault,
		"sometimes": xmlcatalog.PreferDefault,
	}
	for in, expected := range cases {
		if got := xmlcatalog.ParsePrefer(in); got != expected {
			t.Errorf("ParsePrefer(%q): wanted %v, got %v", in, expected, got)
		}
	}

	if xmlcatalog.PreferDefault.Or(xmlcatalog.PreferPublic) != xmlcatalog.PreferPublic {
		t.Errorf("unset preference should fall back to the default")
	}
	if xmlcatalog.PreferSystem.Or(xmlcatalog.PreferPublic) != xmlcatalog.PreferSystem {
		t.Errorf("declared preference should win over the default")
	}
}

func TestWalk(t *testing.T) {
	cat := xmlcatalog.Catalog{
		Entries: []xmlcatalog.Entry{
			{Kind: xmlcatalog.System, Match: "a"},
			{Kind: xmlcatalog.Group, Entries: []xmlcatalog.Entry{
				{Kind: xmlcatalog.Public, Match: "b"},
				{Kind: xmlcatalog.URI, Match: "c"},
			}},
			{Kind: xmlcatalog.NextCatalog, Target: "d"},
		},
	}

	var visited []string
	cat.Walk(func(e *xmlcatalog.Entry) bool {
		visited = append(visited, e.Kind.String())
		return true
	})

	expected := []string{"system", "group", "public", "uri", "nextCatalog"}
	if diffs := deep.Equal(expected, visited); len(diffs) != 0 {
		t.Errorf("Did not walk entries in declaration order: %s", diffs)
	}

	if cat.Len() != 5 {
		t.Errorf("Expected 5 entries, got %d", cat.Len())
	}
}

func TestLoadErrorKinds(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := errors.Wrap(xmlcatalog.NewLoadError("file:///c.xml", xmlcatalog.ErrNotACatalog, cause), "loading")

	if !errors.Is(err, xmlcatalog.ErrNotACatalog) {
		t.Errorf("expected ErrNotACatalog")
	}
	if !errors.Is(err, xmlcatalog.ErrCatalogInvalid) {
		t.Errorf("a non-catalog document should count as an invalid catalog")
	}
	if errors.Is(err, xmlcatalog.ErrCatalogUnavailable) {
		t.Errorf("did not expect ErrCatalogUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the cause to be reachable")
	}

	var le *xmlcatalog.LoadError
	if !errors.As(err, &le) || le.Location != "file:///c.xml" {
		t.Errorf("expected a LoadError for file:///c.xml, got %+v", err)
	}
}
