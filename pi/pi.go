// Package pi finds the catalogs that a document nominates for its own
// resolution, with oasis-xml-catalog processing instructions in its prolog:
//
//	<?oasis-xml-catalog catalog="http://example.com/catalog.xml"?>
//
// Processing instructions after the start of the root element are ignored.
package pi

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/birkland/xmlcatalog/document"
	"github.com/birkland/xmlcatalog/uri"
	"github.com/pkg/errors"
)

// Target is the target of catalog processing instructions
const Target = "oasis-xml-catalog"

// Sniff reads the prolog of a document, and returns the catalog
// pseudo-attribute of each catalog processing instruction in it, in order.
// Reading stops at the root element.
func Sniff(r io.Reader) ([]string, error) {
	dec := document.NewDecoder(r)

	var catalogs []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return catalogs, nil
		}
		if err != nil {
			return catalogs, errors.Wrap(err, "could not read document prolog")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return catalogs, nil
		case xml.ProcInst:
			if t.Target != Target {
				continue
			}
			if c, ok := pseudoAttr(string(t.Inst), "catalog"); ok && c != "" {
				catalogs = append(catalogs, c)
			}
		}
	}
}

// Catalogs sniffs the catalog processing instructions of a document, and
// resolves the catalogs they name against the document's base URI.
func Catalogs(r io.Reader, docBase string) ([]string, error) {
	refs, err := Sniff(r)
	if err != nil {
		return nil, err
	}

	catalogs := make([]string, 0, len(refs))
	for _, ref := range refs {
		catalogs = append(catalogs, uri.Resolve(docBase, ref))
	}
	return catalogs, nil
}

// pseudoAttr finds name="value" or name='value' in processing instruction
// content
func pseudoAttr(inst, name string) (string, bool) {
	rest := inst
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return "", false
		}
		key := strings.TrimSpace(rest[:eq])
		rest = strings.TrimLeft(rest[eq+1:], " \t\r\n")
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return "", false
		}
		end := strings.IndexByte(rest[1:], rest[0])
		if end < 0 {
			return "", false
		}
		value := rest[1 : end+1]
		if key == name {
			return value, true
		}
		rest = rest[end+2:]
	}
}
