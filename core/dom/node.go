package dom

import "strings"

// NodeType classifies a node in the document tree.
type NodeType int

const (
	// OtherNode covers document, doctype and comment nodes.
	OtherNode NodeType = iota
	// ElementNode is a tag such as <div> or <table>.
	ElementNode
	// TextNode holds character data.
	TextNode
)

// Node is a single node of a parsed document. Implementations must be safe to
// read concurrently and must never be mutated by consumers.
type Node interface {
	// Type reports whether the node is an element, a text node or something else.
	Type() NodeType
	// Tag returns the lower-case element name, or "" for non-element nodes.
	Tag() string
	// Attr looks up an attribute by name.
	Attr(name string) (string, bool)
	// Classes returns the whitespace-separated tokens of the class attribute.
	Classes() []string
	// Children returns all direct children, text nodes included, in document order.
	Children() []Node
	// Parent returns the enclosing node, or nil at the root.
	Parent() Node
	// Data returns the character data of a text node and "" otherwise.
	Data() string
}

// skipText lists elements whose character data is not rendered text.
var skipText = map[string]bool{
	"script": true,
	"style":  true,
}

// Walk visits n and its descendants in document order. Returning false from
// visit stops the walk below the current node but not its siblings.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// FindAll returns descendants of root (root itself excluded) matching fn, in
// document order. A positive limit stops the search after that many matches.
func FindAll(root Node, limit int, fn func(Node) bool) []Node {
	return find(root, limit, false, fn)
}

// FindAllInclusive is FindAll with root itself tested first.
func FindAllInclusive(root Node, limit int, fn func(Node) bool) []Node {
	return find(root, limit, true, fn)
}

func find(root Node, limit int, includeRoot bool, fn func(Node) bool) []Node {
	var out []Node
	var visit func(Node) bool
	visit = func(n Node) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if (includeRoot || n != root) && fn(n) {
			out = append(out, n)
		}
		return true
	}
	Walk(root, visit)
	return out
}

// Elements returns descendant elements whose tag is one of tags.
func Elements(root Node, limit int, tags ...string) []Node {
	return FindAll(root, limit, tagMatcher(tags))
}

// ElementsInclusive is Elements with root itself tested first.
func ElementsInclusive(root Node, limit int, tags ...string) []Node {
	return FindAllInclusive(root, limit, tagMatcher(tags))
}

func tagMatcher(tags []string) func(Node) bool {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	return func(n Node) bool {
		return n.Type() == ElementNode && want[n.Tag()]
	}
}

// Text returns the concatenated character data below n without any trimming.
// Script and style contents are excluded.
func Text(n Node) string {
	var b strings.Builder
	eachText(n, func(s string) { b.WriteString(s) })
	return b.String()
}

// StrippedText trims every text node and concatenates the non-empty results.
func StrippedText(n Node) string {
	var b strings.Builder
	eachText(n, func(s string) {
		b.WriteString(strings.TrimSpace(s))
	})
	return b.String()
}

func eachText(n Node, fn func(string)) {
	Walk(n, func(c Node) bool {
		switch c.Type() {
		case TextNode:
			fn(c.Data())
		case ElementNode:
			return !skipText[c.Tag()]
		}
		return true
	})
}

// TextNodes returns the text nodes below root that satisfy fn, in document
// order, skipping script and style contents.
func TextNodes(root Node, limit int, fn func(string) bool) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		switch n.Type() {
		case TextNode:
			if fn(n.Data()) {
				out = append(out, n)
			}
		case ElementNode:
			return !skipText[n.Tag()]
		}
		return true
	})
	return out
}
