package address

import (
	"github.com/leofalp/ratescan/core/dom"
)

// DefaultMaxDescendants caps how many a/span/div descendants [Locator.FindIn]
// inspects at each level of recursion. The value is an empirical heuristic.
const DefaultMaxDescendants = 5

// Locator finds addresses in document trees. The zero value uses
// [DefaultMaxDescendants].
type Locator struct {
	// MaxDescendants limits the recursive descendant search of FindIn.
	MaxDescendants int
}

// NewLocator returns a Locator with the given descendant cap. Non-positive
// values fall back to [DefaultMaxDescendants].
func NewLocator(maxDescendants int) Locator {
	return Locator{MaxDescendants: maxDescendants}
}

func (l Locator) maxDescendants() int {
	if l.MaxDescendants <= 0 {
		return DefaultMaxDescendants
	}
	return l.MaxDescendants
}

// FindAll collects every address reachable through element ids, the four data
// attributes, class tokens, anchor hrefs, the document text, and input/button
// values.
func FindAll(root dom.Node) Set {
	found := make(Set)
	if root == nil {
		return found
	}

	dom.Walk(root, func(n dom.Node) bool {
		if n.Type() != dom.ElementNode {
			return true
		}

		if id, ok := n.Attr("id"); ok && IsAddress(id) {
			found.Add(id)
		}

		for _, name := range dataAttrs {
			if v, ok := n.Attr(name); ok && IsAddress(v) {
				found.Add(v)
			}
		}

		for _, class := range n.Classes() {
			if IsAddress(class) {
				found.Add(class)
			}
		}

		switch n.Tag() {
		case "a":
			if href, ok := n.Attr("href"); ok {
				found.Add(Search(href)...)
			}
		case "input", "button":
			if v, ok := n.Attr("value"); ok && IsAddress(v) {
				found.Add(v)
			}
		}
		return true
	})

	found.Add(Search(dom.Text(root))...)
	return found
}

// FindIn returns the first address associated with a single element, checking
// in order: the id, data-*, href and value attributes (whole value), class
// tokens (whole token), the element's text (embedded), and finally up to
// MaxDescendants a/span/div descendants, recursively.
func (l Locator) FindIn(n dom.Node) (string, bool) {
	if n == nil || n.Type() != dom.ElementNode {
		return "", false
	}

	for _, name := range elementAttrs {
		if v, ok := n.Attr(name); ok && IsAddress(v) {
			return v, true
		}
	}

	for _, class := range n.Classes() {
		if IsAddress(class) {
			return class, true
		}
	}

	if m := pattern.FindString(dom.StrippedText(n)); m != "" {
		return m, true
	}

	for _, child := range dom.Elements(n, l.maxDescendants(), descendantTags...) {
		if addr, ok := l.FindIn(child); ok {
			return addr, true
		}
	}

	return "", false
}

// FindIn runs [Locator.FindIn] with the default descendant cap.
func FindIn(n dom.Node) (string, bool) {
	return Locator{}.FindIn(n)
}
