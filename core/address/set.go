package address

import "sort"

// Set is a deduplicated, case-sensitive collection of addresses.
type Set map[string]struct{}

// Add inserts every address in addrs.
func (s Set) Add(addrs ...string) {
	for _, a := range addrs {
		s[a] = struct{}{}
	}
}

// Has reports whether addr is present.
func (s Set) Has(addr string) bool {
	_, ok := s[addr]
	return ok
}

// Len returns the number of addresses.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the addresses in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
