// Package location canonicalizes user-supplied free-text locations so
// they can serve as a categorical learning feature.
package location

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var (
	reNonLetters = regexp.MustCompile(`[^\p{L}\p{Z}]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize strips everything that is not a letter (any script) or a
// whitespace separator, collapses whitespace, lowercases, trims, and
// stems each remaining token with the English snowball stemmer.
//
// The second return value is false when the input is empty or reduces
// to nothing; absence is distinct from an empty label in the store.
// Deterministic and safe for concurrent use.
func Normalize(s string) (string, bool) {
	if s == "" {
		return "", false
	}

	s = reNonLetters.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}

	words := strings.Split(s, " ")
	stemmed := make([]string, 0, len(words))
	for _, w := range words {
		st, err := snowball.Stem(w, "english", true)
		if err != nil || st == "" {
			// Non-stemmable input degrades to the token itself.
			st = w
		}
		stemmed = append(stemmed, st)
	}

	return strings.Join(stemmed, " "), true
}
