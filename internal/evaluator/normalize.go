package evaluator

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer canonicalizes free text before comparison.
type normalizer struct {
	caseSensitive bool
	stripAccents  bool
}

func (n normalizer) apply(s string) string {
	s = strings.TrimSpace(s)
	if n.stripAccents {
		s = removeDiacritics(s)
	}
	if !n.caseSensitive {
		s = cases.Fold().String(s)
	}
	return s
}

// removeDiacritics decomposes s (NFD), drops combining marks and recomposes,
// so "café" and "cafe" compare equal.
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
