package analysis

import "unicode/utf8"

const (
	DefaultMaxInputChars    = 15000
	DefaultTruncationMarker = "\n\n[Content truncated due to length...]"
)

// Truncate cuts text to max runes and appends marker when it is longer.
// A non-positive max disables truncation.
func Truncate(text string, max int, marker string) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text, false
	}

	n := 0
	for i := range text {
		if n == max {
			return text[:i] + marker, true
		}
		n++
	}
	return text, false
}
