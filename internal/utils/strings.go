package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxStringLength is the preview length used when none is given.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON, indented with two spaces when indent is
// true. A marshalling failure yields a JSON error object instead of panicking,
// so the result is always printable.
func JSONToString(object any, indent bool) string {
	var encoded []byte
	var err error
	if indent {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return `{"error": "failed to marshal to JSON: ` + err.Error() + `"}`
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen runes and records the original
// length in a suffix. Non-positive maxLen uses [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	total := utf8.RuneCountInString(s)
	if total <= maxLen {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s... (truncated, total: %d chars)", string(runes[:maxLen]), total)
}
