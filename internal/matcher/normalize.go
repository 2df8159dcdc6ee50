// Package matcher normalizes free-text addresses and ranks dataset
// property names by fuzzy similarity to a query.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, strips diacritics down to their base letter,
// drops any remaining non-ASCII rune and collapses whitespace.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(text)))
	if err != nil {
		out = strings.ToLower(strings.TrimSpace(text))
	}
	return strings.Join(strings.Fields(out), " ")
}
