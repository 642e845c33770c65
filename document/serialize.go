package document

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"

	"github.com/birkland/xmlcatalog"
	"github.com/pkg/errors"
)

// Serialize writes the effective content of a catalog as an OASIS catalog
// document.  Targets are written as they were resolved at load time, and
// every group carries its effective preference, so reloading the output
// resolves identifiers the same way the original did.
func Serialize(w io.Writer, cat *xmlcatalog.Catalog) error {
	bw := bufio.NewWriter(w)
	s := serializer{w: bw}

	s.raw(xml.Header)
	s.raw(`<catalog xmlns="` + xmlcatalog.Namespace + `"`)
	if p := cat.Prefer.String(); p != "" {
		s.attr("prefer", p)
	}
	if cat.Base != "" && cat.Base != cat.Location {
		s.attr("xml:base", cat.Base)
	}
	s.raw(">\n")

	s.entries(cat.Entries, cat.Base, 1)

	s.raw("</catalog>\n")

	if s.err != nil {
		return errors.Wrap(s.err, "could not serialize catalog")
	}
	return errors.Wrap(bw.Flush(), "could not serialize catalog")
}

type serializer struct {
	w   *bufio.Writer
	err error
}

func (s *serializer) raw(str string) {
	if s.err == nil {
		_, s.err = s.w.WriteString(str)
	}
}

func (s *serializer) attr(name, value string) {
	s.raw(" " + name + `="`)
	if s.err == nil {
		s.err = xml.EscapeText(s.w, []byte(value))
	}
	s.raw(`"`)
}

func (s *serializer) entries(list []xmlcatalog.Entry, base string, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, e := range list {
		s.raw(indent + "<" + e.Kind.String())
		if e.ID != "" {
			s.attr("id", e.ID)
		}
		if e.Base != base {
			s.attr("xml:base", e.Base)
		}

		if e.Kind == xmlcatalog.Group {
			if p := e.Prefer.String(); p != "" {
				s.attr("prefer", p)
			}
			s.raw(">\n")
			s.entries(e.Entries, e.Base, depth+1)
			s.raw(indent + "</group>\n")
			continue
		}

		names := attrNames[e.Kind]
		if names[0] != "" {
			s.attr(names[0], e.Match)
		}
		s.attr(names[1], e.Target)
		s.raw("/>\n")
	}
}
