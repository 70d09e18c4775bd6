// Package text canonicalizes lyric fragments and scores them for
// similarity.
package text

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for comparison: punctuation and all
// whitespace are removed (Unicode-aware) and letters are lowercased.
// Normalize is idempotent.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
