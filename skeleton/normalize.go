package skeleton

import (
	"strings"
	"unicode"
)

// punctuation lists the non-word characters kept by Normalize.
const punctuation = "+-*/=()[]{}^.,;:!?"

// Normalize lower-cases text, drops every character that is not a word
// character, whitespace or one of the arithmetic/punctuation marks
// + - * / = ( ) [ ] { } ^ . , ; : ! ?, then collapses whitespace runs to a
// single space and trims both ends.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		r = unicode.ToLower(r)
		if isSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !isWordRune(r) && !strings.ContainsRune(punctuation, r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isWordRune reports whether r is a Unicode word character: a letter, a
// number or an underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isSpace extends unicode.IsSpace with the ASCII information separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
