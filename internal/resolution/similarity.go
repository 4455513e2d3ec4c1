package resolution

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity is 1 - editDistance/maxLength over runes, in [0, 1].
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
