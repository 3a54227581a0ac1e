package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page. Root exposes it as a [Node] tree; Select
// narrows it with a CSS selector.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document. The parser is lenient: malformed markup is
// repaired the way browsers do, so an error only signals a failing reader.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is a convenience wrapper around [Parse].
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes is a convenience wrapper around [Parse].
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// Root returns the document node.
func (d *Document) Root() Node {
	if d == nil || d.doc == nil || len(d.doc.Nodes) == 0 {
		return nil
	}
	return Wrap(d.doc.Nodes[0])
}

// Select returns the elements matching a CSS selector in document order.
// An invalid selector matches nothing.
func (d *Document) Select(selector string) []Node {
	if d == nil || d.doc == nil {
		return nil
	}
	sel := d.doc.Find(selector)
	out := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Wrap(s.Nodes[0]))
	})
	return out
}

// Wrap adapts an x/net/html node to [Node]. It returns nil for a nil node.
func Wrap(n *html.Node) Node {
	if n == nil {
		return nil
	}
	return htmlNode{n: n}
}

type htmlNode struct {
	n *html.Node
}

func (h htmlNode) Type() NodeType {
	switch h.n.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	default:
		return OtherNode
	}
}

func (h htmlNode) Tag() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

func (h htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (h htmlNode) Classes() []string {
	v, ok := h.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

func (h htmlNode) Children() []Node {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, htmlNode{n: c})
	}
	return out
}

func (h htmlNode) Parent() Node {
	return Wrap(h.n.Parent)
}

func (h htmlNode) Data() string {
	if h.n.Type != html.TextNode {
		return ""
	}
	return h.n.Data
}
