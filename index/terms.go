package index

import (
	"strings"
	"unicode"

	"github.com/poiesic/taskrag/skeleton"
)

// stopWords are dropped from keyword queries. They occur in nearly every
// task statement and carry no ranking signal.
var stopWords = map[string]bool{
	"а": true, "в": true, "во": true, "и": true, "к": true, "на": true,
	"о": true, "об": true, "от": true, "по": true, "с": true, "со": true,
	"у": true, "для": true, "из": true, "или": true, "как": true,
	"что": true, "это": true, "при": true, "не": true, "же": true,
	"the": true, "a": true, "an": true, "of": true, "and": true, "or": true,
	"in": true, "on": true, "to": true, "for": true, "is": true,
}

// Tokens splits normalized text into word tokens. Punctuation and
// arithmetic marks separate tokens and are not returned.
func Tokens(text string) []string {
	return strings.FieldsFunc(skeleton.Normalize(text), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r))
	})
}

// QueryTerms returns the distinct tokens of a keyword query, in order of
// first appearance, without stop words.
func QueryTerms(query string) []string {
	tokens := Tokens(query)
	seen := make(map[string]bool, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}
