// Package token recognizes @path@ placeholders inside text.
//
// A token is either a bare identifier (@prop@) or an identifier followed by
// a dotted remainder (@child.grand.prop@). The remainder after the first dot
// may contain any non-whitespace characters; it is not validated segment by
// segment. The scanner only detects syntax, it never resolves anything.
package token

import (
	"regexp"
	"strings"
)

// Delimiter opens and closes every token.
const Delimiter = "@"

// word is a Unicode word character: letters, nonspacing marks, decimal
// digits and connector punctuation. RE2's \w only covers ASCII.
const word = `[\p{L}\p{Mn}\p{Nd}\p{Pc}]`

// pattern matches @identifier@ or @identifier.rest@.
// The remainder is lazy so contiguous dotted tokens split at the first
// closing @: "@a.b@c@" yields "@a.b@".
var pattern = regexp.MustCompile(`(?i)@` + word + `+@|@` + word + `+\.\S+?@`)

// Match is a single token occurrence.
type Match struct {
	// Raw is the token text including both delimiters, e.g. "@child.name@".
	Raw string

	// Path is Raw with the delimiters removed, e.g. "child.name".
	Path string

	// Start and End are byte offsets of Raw within the scanned text.
	Start int
	End   int
}

// Find returns every token in text in left-to-right order.
// Duplicates are preserved. Returns nil if text contains no token.
func Find(text string) []Match {
	if !strings.Contains(text, Delimiter) {
		return nil
	}

	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		raw := text[loc[0]:loc[1]]
		matches = append(matches, Match{
			Raw:   raw,
			Path:  PathOf(raw),
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}

// Contains reports whether text contains at least one token.
func Contains(text string) bool {
	return strings.Contains(text, Delimiter) && pattern.MatchString(text)
}

// PathOf strips every delimiter from a raw token.
func PathOf(raw string) string {
	return strings.ReplaceAll(raw, Delimiter, "")
}

// Raws returns the raw text of each match, in order.
func Raws(matches []Match) []string {
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Raw
	}
	return out
}
