package services

import (
	"strings"
	"unicode"
)

// NormalizeText produces the canonical comparison form of arbitrary user
// input: lower-cased, every non letter/digit/whitespace rune replaced by
// a space, whitespace runs collapsed, leading/trailing space trimmed.
// Total over all inputs and idempotent; only punctuation or whitespace
// yields the empty string.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
