package resolution

import (
	"strings"

	"golang.org/x/text/cases"
)

// foldCase builds a fresh Caser per call; Casers are stateful and must not be
// shared between goroutines.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// NormalizeKey canonicalizes a username or item name for comparison: one leading
// "@" is dropped, whitespace runs collapse to a single space and the result is
// case-folded.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	s = strings.Join(strings.Fields(s), " ")
	return foldCase(s)
}

// SameKey reports whether two raw keys normalize to the same value.
func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}
