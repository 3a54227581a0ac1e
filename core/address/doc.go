// Package address locates canonical contract addresses ("0x" followed by
// exactly 40 hexadecimal digits) inside a document tree.
//
// Attributes that are meant to be an identifier (id, data-*, class tokens,
// value) must match the pattern as a whole. Free text and link URLs are
// searched for embedded occurrences.
package address
