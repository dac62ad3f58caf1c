package util

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes free-form lookup text for cache keying: it lowercases,
// trims, and collapses any run of whitespace to a single space. Two queries that
// differ only in casing or spacing normalize to the same string.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			prevSpace = true
			continue
		}
		if prevSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		prevSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
