// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package skeleton

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Placeholders substituted by the extraction passes.
const (
	NumberPlaceholder   = "N"
	NamePlaceholder     = "NAME"
	VariablePlaceholder = "VAR"
)

// space matches Unicode whitespace. RE2's \s is ASCII-only.
const space = `[\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	numberPattern = regexp.MustCompile(`\p{Nd}+(?:\.\p{Nd}+)?`)

	// A run of Cyrillic words directly followed by whitespace and a Latin
	// letter. The trailing group is captured and written back since RE2 has
	// no lookahead; a match can never begin inside it.
	namePattern = regexp.MustCompile(`(?i)[а-яё]+(?:` + space + `+[а-яё]+)*(` + space + `+[a-z])`)
)

// Pass is a single text transformation applied by Extract.
type Pass func(string) string

// Passes is the ordered pass list used by Extract.
var Passes = []Pass{ReplaceNumbers, ReplaceNames, ReplaceVariables}

// Extract produces the skeleton of a statement: numbers, names and single
// upper-case variables are replaced by placeholders and the result is
// normalized. Callers pass normalized statement text.
func Extract(text string) string {
	for _, pass := range Passes {
		text = pass(text)
	}
	return Normalize(text)
}

// ReplaceNumbers replaces each integer or decimal literal with N.
func ReplaceNumbers(text string) string {
	return numberPattern.ReplaceAllLiteralString(text, NumberPlaceholder)
}

// ReplaceNames replaces a maximal run of Cyrillic words that is followed by
// whitespace and a Latin letter with NAME. Matching is case-insensitive.
func ReplaceNames(text string) string {
	return namePattern.ReplaceAllString(text, NamePlaceholder+"${1}")
}

// ReplaceVariables replaces every standalone upper-case Latin letter with
// VAR. A letter is standalone when neither neighbour is a word character.
func ReplaceVariables(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	prev := rune(-1)
	for i, r := range text {
		if r >= 'A' && r <= 'Z' && !isWordBefore(prev) {
			next, _ := utf8.DecodeRuneInString(text[i+1:])
			if !isWordRune(next) {
				b.WriteString(VariablePlaceholder)
				prev = r
				continue
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func isWordBefore(r rune) bool {
	return r >= 0 && isWordRune(r)
}
