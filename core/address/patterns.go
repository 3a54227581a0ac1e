package address

import "regexp"

// pattern finds embedded addresses in free text.
var pattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// fullPattern accepts a value only when the whole string is an address.
var fullPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// dataAttrs are the data attributes that may carry an address.
var dataAttrs = []string{"data-address", "data-contract", "data-token", "data-asset"}

// elementAttrs is the fixed lookup order used by [Locator.FindIn].
var elementAttrs = []string{"id", "data-address", "data-contract", "data-token", "data-asset", "href", "value"}

// descendantTags bounds the recursive search of [Locator.FindIn].
var descendantTags = []string{"a", "span", "div"}

// IsAddress reports whether s is exactly one canonical address.
func IsAddress(s string) bool {
	return fullPattern.MatchString(s)
}

// Search returns every address embedded in s, in order of appearance.
func Search(s string) []string {
	return pattern.FindAllString(s, -1)
}
