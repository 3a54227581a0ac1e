// Package dom defines the read-only document tree consumed by the address
// locator and the extraction engine.
//
// The tree is modelled as the [Node] interface so matching logic never depends
// on a concrete parser. [Parse] builds a tree from HTML using goquery on top of
// golang.org/x/net/html; tests and alternative backends can supply their own
// Node implementations.
//
// Text helpers mirror two common renderings: [Text] concatenates every
// descendant text node as-is, while [StrippedText] trims each text node before
// concatenating it.
package dom
