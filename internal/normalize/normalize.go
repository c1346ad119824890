// Package normalize folds free text into comparable forms for listing matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks returns a fresh NFD + combining-mark removal chain. Chains carry
// state, so each call gets its own.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// removeDiacritics drops combining marks after canonical decomposition.
func removeDiacritics(s string) string {
	out, _, err := transform.String(stripMarks(), s)
	if err != nil {
		return s
	}
	return out
}

// Text lower-cases s, strips diacritics, drops everything outside [a-z0-9 ]
// and collapses runs of whitespace into single spaces.
func Text(s string) string {
	if s == "" {
		return ""
	}

	folded := removeDiacritics(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Fold upper-cases s and strips diacritics while keeping punctuation, so
// "Citroën C4 Picasso" becomes "CITROEN C4 PICASSO".
func Fold(s string) string {
	return strings.ToUpper(removeDiacritics(s))
}

// ContainsWord reports whether the normalized phrase occurs in the normalized
// haystack on word boundaries. Both arguments must already be outputs of Text.
func ContainsWord(haystack, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+phrase+" ")
}
