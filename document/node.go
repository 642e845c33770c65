package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/ianaindex"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Node is an element of a parsed document.  Character data, comments and
// processing instructions are not retained.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node
}

// Attribute returns the value of the unqualified attribute with the given
// local name
func (n *Node) Attribute(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Base returns the xml:base attribute of the node, if present
func (n *Node) Base() (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == "base" && (a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
			return a.Value, true
		}
	}
	return "", false
}

// Parse reads an XML document into a tree of Nodes, returning its root
// element.
func Parse(r io.Reader) (*Node, error) {
	dec := NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "could not parse xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, Attr: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("more than one root element")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}

	return root, nil
}

// NewDecoder creates an XML decoder that understands the IANA registered
// character encodings
func NewDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	return dec
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported encoding %s", label)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %s", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Source is one of the physical forms a catalog document can be supplied in.
// Whatever the form, it is normalized into a Node tree before the catalog is
// built.
type Source interface {
	tree() (*Node, error)
}

type treeSource struct{ root *Node }

func (s treeSource) tree() (*Node, error) {
	if s.root == nil {
		return nil, fmt.Errorf("nil document tree")
	}
	return s.root, nil
}

type readerSource struct{ r io.Reader }

func (s readerSource) tree() (*Node, error) {
	return Parse(s.r)
}

// Tree is a Source for an already parsed document
func Tree(root *Node) Source {
	return treeSource{root}
}

// Reader is a Source for a byte or character stream
func Reader(r io.Reader) Source {
	return readerSource{r}
}

// Bytes is a Source for an in-memory document
func Bytes(b []byte) Source {
	return readerSource{bytes.NewReader(b)}
}

// String is a Source for a document held in a string
func String(s string) Source {
	return readerSource{strings.NewReader(s)}
}
