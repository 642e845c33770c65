package pi_test

import (
	"strings"
	"testing"

	"github.com/birkland/xmlcatalog/pi"
	"github.com/go-test/deep"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name     string
		doc      string
		expected []string
	}{
		{"none", `<?xml version="1.0"?><doc/>`, nil},
		{"one", `<?xml version="1.0"?>
			<?oasis-xml-catalog catalog="catalog.xml"?>
			<!DOCTYPE doc SYSTEM "doc.dtd">
			<doc/>`, []string{"catalog.xml"}},
		{"singleQuotes", `<?oasis-xml-catalog catalog='http://example.com/c.xml'?><doc/>`,
			[]string{"http://example.com/c.xml"}},
		{"otherPseudoAttributes", `<?oasis-xml-catalog version="1.1" catalog = "c.xml"?><doc/>`, []string{"c.xml"}},
		{"several", `<?oasis-xml-catalog catalog="a.xml"?><?other catalog="x.xml"?><?oasis-xml-catalog catalog="b.xml"?><doc/>`,
			[]string{"a.xml", "b.xml"}},
		{"afterRoot", `<doc><?oasis-xml-catalog catalog="late.xml"?></doc>`, nil},
		{"noCatalog", `<?oasis-xml-catalog version="1.1"?><doc/>`, nil},
		{"unterminated", `<?oasis-xml-catalog catalog="c.xml?><doc/>`, nil},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got, err := pi.Sniff(strings.NewReader(c.doc))
			if err != nil {
				t.Fatalf("Sniff failed: %+v", err)
			}
			if diffs := deep.Equal(c.expected, got); len(diffs) != 0 {
				t.Errorf("Unexpected catalogs: %s", diffs)
			}
		})
	}
}

func TestSniffMalformed(t *testing.T) {
	if _, err := pi.Sniff(strings.NewReader(`<?oasis-xml-catalog catalog="a.xml"?><<`)); err == nil {
		t.Errorf("Expected an error for a malformed prolog")
	}
}

func TestCatalogs(t *testing.T) {
	doc := `<?oasis-xml-catalog catalog="catalogs/doc.xml"?>
		<?oasis-xml-catalog catalog="http://example.org/catalog.xml"?>
		<doc/>`

	got, err := pi.Catalogs(strings.NewReader(doc), "file:///work/docs/doc.xml")
	if err != nil {
		t.Fatalf("Catalogs failed: %+v", err)
	}

	expected := []string{"file:///work/docs/catalogs/doc.xml", "http://example.org/catalog.xml"}
	if diffs := deep.Equal(expected, got); len(diffs) != 0 {
		t.Errorf("Unexpected catalogs: %s", diffs)
	}
}
